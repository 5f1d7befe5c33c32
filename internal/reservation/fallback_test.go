package reservation

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservut/room-reservation/internal/role"
)

// flakyRepository is a memory store that can be switched off like a
// database going away and coming back.
type flakyRepository struct {
	inner *MemoryRepository
	down  atomic.Bool
}

func newFlakyRepository() *flakyRepository {
	return &flakyRepository{inner: NewMemoryRepository()}
}

func (f *flakyRepository) FindOverlapping(ctx context.Context, roomName string, start, end time.Time) ([]*Reservation, error) {
	if f.down.Load() {
		return nil, errUnreachable
	}
	return f.inner.FindOverlapping(ctx, roomName, start, end)
}

func (f *flakyRepository) Insert(ctx context.Context, r *Reservation) error {
	if f.down.Load() {
		return errUnreachable
	}
	return f.inner.Insert(ctx, r)
}

func (f *flakyRepository) DeleteMany(ctx context.Context, ids []string) error {
	if f.down.Load() {
		return errUnreachable
	}
	return f.inner.DeleteMany(ctx, ids)
}

func (f *flakyRepository) List(ctx context.Context, filter Filter) ([]*Reservation, error) {
	if f.down.Load() {
		return nil, errUnreachable
	}
	return f.inner.List(ctx, filter)
}

func (f *flakyRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	if f.down.Load() {
		return nil, errUnreachable
	}
	return f.inner.GetByID(ctx, id)
}

func (f *flakyRepository) InTx(ctx context.Context, roomName string, fn func(Repository) error) error {
	if f.down.Load() {
		return errUnreachable
	}
	return f.inner.InTx(ctx, roomName, fn)
}

func TestFallbackRepositoryRecovery(t *testing.T) {
	t.Run("Outage Reservations Still Conflict", func(t *testing.T) {
		primary, secondary := newFlakyRepository(), NewMemoryRepository()
		e := newTestEngineWithRepo(t, NewFallbackRepository(primary, secondary, nil))

		primary.down.Store(true)
		guide, err := e.submit(t, role.Guide, "R1", at(2, 0), at(3, 0))
		require.NoError(t, err)
		primary.down.Store(false)

		_, err = e.submit(t, role.Student, "R1", at(2, 0), at(3, 0))
		assert.ErrorIs(t, err, ErrConflict)

		assert.Equal(t, []string{guide.ID}, ids(e.list(t, ListFilter{})))
		assert.Equal(t, 0, primary.inner.Len())
	})

	t.Run("Eviction Reaches Fallback Store", func(t *testing.T) {
		primary, secondary := newFlakyRepository(), NewMemoryRepository()
		e := newTestEngineWithRepo(t, NewFallbackRepository(primary, secondary, nil))

		before, err := e.submit(t, role.Student, "R1", at(1, 0), at(2, 0))
		require.NoError(t, err)

		primary.down.Store(true)
		during, err := e.submit(t, role.Student, "R1", at(2, 0), at(3, 0))
		require.NoError(t, err)
		primary.down.Store(false)

		admin, err := e.submit(t, role.HeadAdmin, "R1", at(1, 30), at(2, 30))
		require.NoError(t, err)

		assert.Equal(t, []string{admin.ID}, ids(e.list(t, ListFilter{})))
		assert.Equal(t, 0, secondary.Len())
		assert.Equal(t, 1, primary.inner.Len())

		for _, id := range []string{before.ID, during.ID} {
			_, err := e.svc.GetByID(context.Background(), id)
			assert.ErrorIs(t, err, ErrNotFound)
		}
	})

	t.Run("Rejected Unit Keeps Fallback Store", func(t *testing.T) {
		primary, secondary := newFlakyRepository(), NewMemoryRepository()
		e := newTestEngineWithRepo(t, NewFallbackRepository(primary, secondary, nil))

		primary.down.Store(true)
		admin, err := e.submit(t, role.HeadAdmin, "R1", at(2, 0), at(3, 0))
		require.NoError(t, err)
		primary.down.Store(false)

		_, err = e.submit(t, role.Guide, "R1", at(2, 30), at(3, 30))
		assert.ErrorIs(t, err, ErrConflict)

		assert.Equal(t, 1, secondary.Len())
		got, err := e.svc.GetByID(context.Background(), admin.ID)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, got.ID)
	})

	t.Run("Merged Reads Are Ordered", func(t *testing.T) {
		primary, secondary := newFlakyRepository(), NewMemoryRepository()
		repo := NewFallbackRepository(primary, secondary, nil)
		ctx := context.Background()

		late := &Reservation{RoomName: "R1", StartTime: at(5, 0), EndTime: at(6, 0), PriorityLevel: 1}
		early := &Reservation{RoomName: "R1", StartTime: at(1, 0), EndTime: at(2, 0), PriorityLevel: 1}
		require.NoError(t, primary.Insert(ctx, late))
		require.NoError(t, secondary.Insert(ctx, early))

		got, err := repo.List(ctx, Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{early.ID, late.ID}, ids(got))

		got, err = repo.FindOverlapping(ctx, "R1", at(0, 0), at(8, 0))
		require.NoError(t, err)
		assert.Equal(t, []string{early.ID, late.ID}, ids(got))
	})
}
