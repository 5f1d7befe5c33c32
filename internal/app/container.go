package app

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/reservut/room-reservation/internal/api"
	"github.com/reservut/room-reservation/internal/auth"
	"github.com/reservut/room-reservation/internal/reservation"
	"github.com/reservut/room-reservation/internal/role"
	"github.com/reservut/room-reservation/internal/roompolicy"
	"github.com/reservut/room-reservation/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	// DBPool is optional; nil serves everything from memory.
	DBPool *pgxpool.Pool
	// Redis is optional; nil keeps room locks process-local.
	Redis        redis.Cmdable
	RoomLockTTL  time.Duration
	RoomLockWait time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	MaxReservationDuration time.Duration
	RolePriorities         role.PriorityTable
	RoomPolicies           []roompolicy.Policy
	AllowedEmailDomains    []string

	Logger *slog.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router             *gin.Engine
	JWTManager         *auth.JWTManager
	UserService        user.Service
	PolicyService      roompolicy.Service
	ReservationService reservation.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Init Components
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	var userRepo user.Repository = user.NewMemoryRepository()
	if cfg.DBPool != nil {
		userRepo = user.NewFallbackRepository(user.NewPgxRepository(cfg.DBPool), userRepo, logger)
	}
	userService := user.NewService(userRepo, cfg.AllowedEmailDomains, logger)

	// Room Policy Module
	policies := cfg.RoomPolicies
	if len(policies) == 0 {
		policies = roompolicy.DefaultPolicies()
	}
	policyService := roompolicy.NewService(roompolicy.NewMemoryRepository(policies), logger)

	// Reservation Module
	var resRepo reservation.Repository = reservation.NewMemoryRepository()
	if cfg.DBPool != nil {
		resRepo = reservation.NewFallbackRepository(reservation.NewPgxRepository(cfg.DBPool), resRepo, logger)
	}

	var locker reservation.Locker = reservation.NewLocalLocker()
	if cfg.Redis != nil {
		locker = reservation.NewRedisLocker(cfg.Redis, locker, reservation.RedisLockOptions{
			TTL:  cfg.RoomLockTTL,
			Wait: cfg.RoomLockWait,
		}, logger)
	}

	resService := reservation.NewService(resRepo, locker, userService, policyService, reservation.Config{
		MaxDuration: cfg.MaxReservationDuration,
		Priorities:  cfg.RolePriorities,
	}, logger)

	// API Router Config
	routerParams := api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		UserService:        userService,
		PolicyService:      policyService,
		ReservationService: resService,
		JWTManager:         jwtManager,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:             router,
		JWTManager:         jwtManager,
		UserService:        userService,
		PolicyService:      policyService,
		ReservationService: resService,
	}
}
