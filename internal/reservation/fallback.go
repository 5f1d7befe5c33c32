package reservation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/reservut/room-reservation/internal/pkg/fallback"
)

// FallbackRepository serves reservations from primary and transparently
// substitutes secondary for any call the primary fails with a storage
// error. Domain errors from either store pass through unchanged.
//
// Reservations admitted into secondary during an outage stay live after
// primary recovers: reads merge both stores and evictions apply to both.
type FallbackRepository struct {
	primary   Repository
	secondary Repository
	logger    *slog.Logger
}

// NewFallbackRepository wraps primary with secondary. A nil primary serves
// everything from secondary.
func NewFallbackRepository(primary, secondary Repository, logger *slog.Logger) *FallbackRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackRepository{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With("repository", "reservation"),
	}
}

func call[T any](ctx context.Context, r *FallbackRepository, op string, fn func(Repository, context.Context) (T, error)) (T, error) {
	var primary func(context.Context) (T, error)
	if r.primary != nil {
		primary = func(ctx context.Context) (T, error) { return fn(r.primary, ctx) }
	}
	return fallback.Call(ctx, r.logger, op, primary, func(ctx context.Context) (T, error) {
		return fn(r.secondary, ctx)
	})
}

func exec(ctx context.Context, r *FallbackRepository, op string, fn func(Repository, context.Context) error) error {
	_, err := call(ctx, r, op, func(repo Repository, ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(repo, ctx)
	})
	return err
}

// readAll reads from primary merged with secondary, or from secondary
// alone when primary is unavailable.
func (r *FallbackRepository) readAll(
	ctx context.Context,
	op string,
	fn func(Repository, context.Context) ([]*Reservation, error),
) ([]*Reservation, error) {
	return call(ctx, r, op, func(repo Repository, ctx context.Context) ([]*Reservation, error) {
		out, err := fn(repo, ctx)
		if err != nil || repo == r.secondary {
			return out, err
		}
		held, err := fn(r.secondary, ctx)
		if err != nil {
			return nil, err
		}
		return mergeReservations(out, held, nil), nil
	})
}

func (r *FallbackRepository) FindOverlapping(ctx context.Context, roomName string, start, end time.Time) ([]*Reservation, error) {
	return r.readAll(ctx, "reservation.FindOverlapping", func(repo Repository, ctx context.Context) ([]*Reservation, error) {
		return repo.FindOverlapping(ctx, roomName, start, end)
	})
}

func (r *FallbackRepository) Insert(ctx context.Context, res *Reservation) error {
	return exec(ctx, r, "reservation.Insert", func(repo Repository, ctx context.Context) error {
		return repo.Insert(ctx, res)
	})
}

func (r *FallbackRepository) DeleteMany(ctx context.Context, ids []string) error {
	err := exec(ctx, r, "reservation.DeleteMany", func(repo Repository, ctx context.Context) error {
		return repo.DeleteMany(ctx, ids)
	})
	if err != nil || r.primary == nil {
		return err
	}
	return r.secondary.DeleteMany(ctx, ids)
}

func (r *FallbackRepository) List(ctx context.Context, filter Filter) ([]*Reservation, error) {
	return r.readAll(ctx, "reservation.List", func(repo Repository, ctx context.Context) ([]*Reservation, error) {
		return repo.List(ctx, filter)
	})
}

func (r *FallbackRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	res, err := call(ctx, r, "reservation.GetByID", func(repo Repository, ctx context.Context) (*Reservation, error) {
		return repo.GetByID(ctx, id)
	})
	if errors.Is(err, ErrNotFound) && r.primary != nil {
		// Admitted while the primary store was unavailable.
		return r.secondary.GetByID(ctx, id)
	}
	return res, err
}

// InTx runs the whole unit in primary, seeing secondary's reservations as
// well. Evictions of secondary reservations are applied once primary
// commits. If primary fails with a storage error the unit is rolled back
// there and re-run against secondary.
func (r *FallbackRepository) InTx(ctx context.Context, roomName string, fn func(tx Repository) error) error {
	return exec(ctx, r, "reservation.InTx", func(repo Repository, ctx context.Context) error {
		if repo == r.secondary {
			return repo.InTx(ctx, roomName, fn)
		}

		tx := &fallbackTx{secondary: r.secondary, evicted: make(map[string]struct{})}
		err := repo.InTx(ctx, roomName, func(ptx Repository) error {
			tx.primary = ptx
			return fn(tx)
		})
		if err != nil {
			return err
		}

		if len(tx.evicted) > 0 {
			if err := r.secondary.DeleteMany(ctx, tx.evictedIDs()); err != nil {
				// Primary has committed; the unit must not be re-run.
				r.logger.ErrorContext(ctx, "failed to evict from fallback store",
					"room", roomName, "error", err)
			}
		}
		return nil
	})
}

// fallbackTx is a primary transaction that also reads secondary's
// reservations and records evictions to apply there.
type fallbackTx struct {
	primary   Repository
	secondary Repository
	evicted   map[string]struct{}
}

func (t *fallbackTx) evictedIDs() []string {
	out := make([]string, 0, len(t.evicted))
	for id := range t.evicted {
		out = append(out, id)
	}
	return out
}

func (t *fallbackTx) FindOverlapping(ctx context.Context, roomName string, start, end time.Time) ([]*Reservation, error) {
	out, err := t.primary.FindOverlapping(ctx, roomName, start, end)
	if err != nil {
		return nil, err
	}
	held, err := t.secondary.FindOverlapping(ctx, roomName, start, end)
	if err != nil {
		return nil, err
	}
	return mergeReservations(out, held, t.evicted), nil
}

func (t *fallbackTx) Insert(ctx context.Context, res *Reservation) error {
	return t.primary.Insert(ctx, res)
}

func (t *fallbackTx) DeleteMany(ctx context.Context, ids []string) error {
	if err := t.primary.DeleteMany(ctx, ids); err != nil {
		return err
	}
	for _, id := range ids {
		t.evicted[id] = struct{}{}
	}
	return nil
}

func (t *fallbackTx) List(ctx context.Context, filter Filter) ([]*Reservation, error) {
	out, err := t.primary.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	held, err := t.secondary.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return mergeReservations(out, held, t.evicted), nil
}

func (t *fallbackTx) GetByID(ctx context.Context, id string) (*Reservation, error) {
	res, err := t.primary.GetByID(ctx, id)
	if !errors.Is(err, ErrNotFound) {
		return res, err
	}
	if _, gone := t.evicted[id]; gone {
		return nil, ErrNotFound
	}
	return t.secondary.GetByID(ctx, id)
}

func (t *fallbackTx) InTx(ctx context.Context, roomName string, fn func(tx Repository) error) error {
	return fn(t)
}

// mergeReservations combines primary and secondary results by id, drops
// skipped ids and orders by start time.
func mergeReservations(primary, secondary []*Reservation, skip map[string]struct{}) []*Reservation {
	seen := make(map[string]struct{}, len(primary)+len(secondary))
	out := make([]*Reservation, 0, len(primary)+len(secondary))
	for _, group := range [][]*Reservation{primary, secondary} {
		for _, res := range group {
			if _, gone := skip[res.ID]; gone {
				continue
			}
			if _, dup := seen[res.ID]; dup {
				continue
			}
			seen[res.ID] = struct{}{}
			out = append(out, res)
		}
	}
	sortByStart(out)
	return out
}
