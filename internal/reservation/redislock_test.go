package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservut/room-reservation/internal/role"
)

func newMockLocker(t *testing.T, opts RedisLockOptions) (*RedisLocker, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	t.Cleanup(func() { _ = db.Close() })

	l := NewRedisLocker(db, NewLocalLocker(), opts, nil)
	l.newToken = func() string { return "token-1" }
	return l, mock
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	const key = "reservation:room-lock:R1"

	t.Run("Acquire And Release", func(t *testing.T) {
		l, mock := newMockLocker(t, RedisLockOptions{TTL: 5 * time.Second})
		mock.ExpectSetNX(key, "token-1", 5*time.Second).SetVal(true)
		mock.ExpectEval(releaseScript, []string{key}, "token-1").SetVal(int64(1))

		unlock, err := l.Lock(ctx, "R1")
		require.NoError(t, err)
		unlock()

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Retries Until Free", func(t *testing.T) {
		l, mock := newMockLocker(t, RedisLockOptions{
			TTL:           time.Second,
			Wait:          time.Second,
			RetryInterval: time.Millisecond,
		})
		mock.ExpectSetNX(key, "token-1", time.Second).SetVal(false)
		mock.ExpectSetNX(key, "token-1", time.Second).SetVal(true)
		mock.ExpectEval(releaseScript, []string{key}, "token-1").SetVal(int64(1))

		unlock, err := l.Lock(ctx, "R1")
		require.NoError(t, err)
		unlock()

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Busy After Wait", func(t *testing.T) {
		l, mock := newMockLocker(t, RedisLockOptions{TTL: time.Second})
		mock.ExpectSetNX(key, "token-1", time.Second).SetVal(false)

		unlock, err := l.Lock(ctx, "R1")
		assert.Nil(t, unlock)
		assert.ErrorIs(t, err, ErrRoomBusy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Cancelled While Waiting", func(t *testing.T) {
		l, mock := newMockLocker(t, RedisLockOptions{TTL: time.Second, Wait: time.Minute, RetryInterval: time.Minute})
		mock.ExpectSetNX(key, "token-1", time.Second).SetVal(false)

		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()

		_, err := l.Lock(cctx, "R1")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Redis Down Uses Local Lock", func(t *testing.T) {
		l, mock := newMockLocker(t, RedisLockOptions{TTL: time.Second})
		mock.ExpectSetNX(key, "token-1", time.Second).SetErr(errors.New("connection refused"))

		unlock, err := l.Lock(ctx, "R1")
		require.NoError(t, err)
		unlock()

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Release Failure Is Tolerated", func(t *testing.T) {
		l, mock := newMockLocker(t, RedisLockOptions{TTL: time.Second})
		mock.ExpectSetNX(key, "token-1", time.Second).SetVal(true)
		mock.ExpectEval(releaseScript, []string{key}, "token-1").SetErr(errors.New("connection reset"))

		unlock, err := l.Lock(ctx, "R1")
		require.NoError(t, err)
		assert.NotPanics(t, unlock)
	})

	t.Run("Redis Failure Keeps Local Exclusion", func(t *testing.T) {
		l, mock := newMockLocker(t, RedisLockOptions{TTL: 5 * time.Second})
		mock.ExpectSetNX(key, "token-1", 5*time.Second).SetVal(true)
		mock.ExpectEval(releaseScript, []string{key}, "token-1").SetVal(int64(1))
		mock.ExpectSetNX(key, "token-1", 5*time.Second).SetErr(errors.New("connection reset"))

		first, err := l.Lock(ctx, "R1")
		require.NoError(t, err)

		acquired := make(chan func(), 1)
		go func() {
			second, err := l.Lock(ctx, "R1")
			if err == nil {
				acquired <- second
			}
		}()

		select {
		case <-acquired:
			t.Fatal("second holder acquired R1 while the first still holds it")
		case <-time.After(50 * time.Millisecond):
		}

		first()

		select {
		case second := <-acquired:
			second()
		case <-time.After(time.Second):
			t.Fatal("second holder never acquired R1")
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Busy Releases Local Lock", func(t *testing.T) {
		l, mock := newMockLocker(t, RedisLockOptions{TTL: 5 * time.Second})
		mock.ExpectSetNX(key, "token-1", 5*time.Second).SetVal(false)
		mock.ExpectSetNX(key, "token-1", 5*time.Second).SetErr(errors.New("connection refused"))

		_, err := l.Lock(ctx, "R1")
		require.ErrorIs(t, err, ErrRoomBusy)

		unlock, err := l.Lock(ctx, "R1")
		require.NoError(t, err)
		unlock()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Lease Is Renewed While Held", func(t *testing.T) {
		l, mock := newMockLocker(t, RedisLockOptions{TTL: 5 * time.Second, RenewInterval: 5 * time.Millisecond})
		mock.MatchExpectationsInOrder(false)
		mock.ExpectSetNX(key, "token-1", 5*time.Second).SetVal(true)
		mock.ExpectEval(renewScript, []string{key}, "token-1", int64(5000)).SetVal(int64(1))
		mock.ExpectEval(releaseScript, []string{key}, "token-1").SetVal(int64(1))

		unlock, err := l.Lock(ctx, "R1")
		require.NoError(t, err)
		time.Sleep(50 * time.Millisecond)
		unlock()

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestServiceWithRedisLocker(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	e := newTestEngine(t)
	locker := NewRedisLocker(db, nil, RedisLockOptions{TTL: time.Second}, nil)
	locker.newToken = func() string { return "token-1" }
	svc := NewService(e.repo, locker, e.users, e.policies, Config{}, nil)

	const key = "reservation:room-lock:R1"
	mock.ExpectSetNX(key, "token-1", time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{key}, "token-1").SetVal(int64(1))
	mock.ExpectSetNX(key, "token-1", time.Second).SetVal(false)

	_, err := svc.Submit(context.Background(), e.request(role.Student, "R1", at(1, 0), at(2, 0)))
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), e.request(role.Student, "R1", at(3, 0), at(4, 0)))
	assert.ErrorIs(t, err, ErrRoomBusy)
	assert.Equal(t, 1, e.repo.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}
