package reservation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if this holder still owns it.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// renewScript extends the lease only if this holder still owns it.
const renewScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`

// RedisLockOptions tunes RedisLocker.
type RedisLockOptions struct {
	// TTL is the lease on a held lock, bounding how long a crashed holder
	// can block the room.
	TTL time.Duration
	// Wait is how long Lock retries before failing with ErrRoomBusy.
	Wait time.Duration
	// RetryInterval is the pause between acquisition attempts.
	RetryInterval time.Duration
	// RenewInterval is how often a held lease is extended. Defaults to a
	// third of TTL.
	RenewInterval time.Duration
	// KeyPrefix namespaces lock keys.
	KeyPrefix string
}

// RedisLocker serializes rooms across processes with SET NX leases. The
// local Locker is always taken first, so requests in one process never
// overlap even when redis fails mid-flight; when redis is unreachable the
// local lock alone is held.
type RedisLocker struct {
	client   redis.Cmdable
	local    Locker
	opts     RedisLockOptions
	logger   *slog.Logger
	newToken func() string
}

// NewRedisLocker creates a RedisLocker. local is used while redis is down.
func NewRedisLocker(client redis.Cmdable, local Locker, opts RedisLockOptions, logger *slog.Logger) *RedisLocker {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.Wait < 0 {
		opts.Wait = 0
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 25 * time.Millisecond
	}
	if opts.RenewInterval <= 0 {
		opts.RenewInterval = opts.TTL / 3
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "reservation:room-lock:"
	}
	if local == nil {
		local = NewLocalLocker()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLocker{
		client:   client,
		local:    local,
		opts:     opts,
		logger:   logger.With("component", "redis_locker"),
		newToken: uuid.NewString,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, roomName string) (func(), error) {
	unlockLocal, err := l.local.Lock(ctx, roomName)
	if err != nil {
		return nil, err
	}

	release, err := l.acquire(ctx, roomName)
	if err != nil {
		unlockLocal()
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			release()
			unlockLocal()
		})
	}, nil
}

// acquire takes the redis lease for roomName. A redis error yields a no-op
// release, leaving the caller on the local lock alone.
func (l *RedisLocker) acquire(ctx context.Context, roomName string) (func(), error) {
	key := l.opts.KeyPrefix + roomName
	token := l.newToken()
	deadline := time.Now().Add(l.opts.Wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.opts.TTL).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			l.logger.WarnContext(ctx, "redis unavailable, using local room lock",
				"room", roomName, "error", err)
			return func() {}, nil
		}
		if ok {
			return l.hold(key, token), nil
		}

		if !time.Now().Before(deadline) {
			return nil, ErrRoomBusy
		}

		timer := time.NewTimer(l.opts.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// hold keeps the lease alive until the returned func releases it.
func (l *RedisLocker) hold(key, token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(l.opts.RenewInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				l.renew(key, token)
			}
		}
	}()

	return func() {
		close(stop)
		<-done

		// The request context may already be cancelled; release regardless.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release room lock, it will expire with its lease",
				"key", key, "error", err)
		}
	}
}

func (l *RedisLocker) renew(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), l.opts.RenewInterval)
	defer cancel()

	n, err := l.client.Eval(ctx, renewScript, []string{key}, token, l.opts.TTL.Milliseconds()).Int64()
	switch {
	case err != nil:
		l.logger.Warn("failed to renew room lock", "key", key, "error", err)
	case n == 0:
		l.logger.Warn("room lock lease lost", "key", key)
	}
}
