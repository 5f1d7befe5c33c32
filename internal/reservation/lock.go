package reservation

import (
	"context"

	"github.com/reservut/room-reservation/internal/pkg/keylock"
)

// Locker serializes admission units per room. Units for different rooms
// never block each other.
type Locker interface {
	// Lock blocks until roomName is held or fails fast, and returns the
	// release func.
	Lock(ctx context.Context, roomName string) (unlock func(), err error)
}

// LocalLocker is a process-local Locker.
type LocalLocker struct {
	keys *keylock.KeyLock
}

// NewLocalLocker creates a process-local Locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{keys: keylock.New()}
}

func (l *LocalLocker) Lock(ctx context.Context, roomName string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.keys.Lock(roomName), nil
}
