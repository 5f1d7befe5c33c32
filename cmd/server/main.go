package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/reservut/room-reservation/internal/app"
	"github.com/reservut/room-reservation/internal/config"
	"github.com/reservut/room-reservation/internal/db"
	"github.com/reservut/room-reservation/internal/roompolicy"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Structured logger for services
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// Seed room policies
	policies, err := roompolicy.LoadFile(cfg.RoomPolicyFile)
	if err != nil {
		log.Fatalf("failed to load room policies: %v", err)
	}

	// Connect DB (optional)
	pool := connectDB(ctx, cfg.DBDSN)
	if pool != nil {
		defer pool.Close()
	}

	// Connect Redis (optional)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("redis ping failed, room locks fall back to local until it recovers: %v", err)
		}
	}

	appCfg := app.Config{
		IsProduction:           cfg.IsProduction,
		ProdOrigins:            cfg.ProdOrigins,
		DBPool:                 pool,
		RoomLockTTL:            cfg.RoomLockTTL,
		RoomLockWait:           cfg.RoomLockWait,
		JWTSecret:              cfg.JWTSecret,
		JWTTTL:                 cfg.JWTAccessTokenTTL,
		MaxReservationDuration: cfg.MaxReservationDuration,
		RolePriorities:         cfg.RolePriorities,
		RoomPolicies:           policies,
		AllowedEmailDomains:    cfg.AllowedEmailDomains,
		Logger:                 logger,
	}
	if redisClient != nil {
		appCfg.Redis = redisClient
	}
	container := app.NewContainer(appCfg)

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: container.Router,
	}

	// Run server in separate goroutine
	go func() {
		log.Printf("server running on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Println("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	log.Println("server exited gracefully")
}

// connectDB returns nil when no DSN is configured or the database cannot be
// reached; the server then runs on in-memory stores.
func connectDB(ctx context.Context, dsn string) *pgxpool.Pool {
	if dsn == "" {
		log.Println("DB_DSN not set, using in-memory stores")
		return nil
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Printf("failed to connect to db, using in-memory stores: %v", err)
		return nil
	}

	if err := db.Migrate(ctx, pool); err != nil {
		log.Printf("failed to migrate db, using in-memory stores: %v", err)
		pool.Close()
		return nil
	}
	return pool
}
