package reservation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository. It owns its data and all
// mutation goes through its methods.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Reservation
	now   func() time.Time
}

// NewMemoryRepository creates an empty in-process store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]*Reservation),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func cloneReservation(r *Reservation) *Reservation {
	cp := *r
	cp.Owner = nil
	return &cp
}

func sortByStart(rs []*Reservation) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].StartTime.Equal(rs[j].StartTime) {
			return rs[i].CreatedAt.Before(rs[j].CreatedAt)
		}
		return rs[i].StartTime.Before(rs[j].StartTime)
	})
}

func (m *MemoryRepository) FindOverlapping(ctx context.Context, roomName string, start, end time.Time) ([]*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Reservation
	for _, r := range m.items {
		if r.RoomName == roomName && r.Overlaps(start, end) {
			out = append(out, cloneReservation(r))
		}
	}
	sortByStart(out)
	return out, nil
}

func (m *MemoryRepository) Insert(ctx context.Context, r *Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.ID = uuid.NewString()
	r.CreatedAt = m.now()

	m.items[r.ID] = cloneReservation(r)
	return nil
}

func (m *MemoryRepository) DeleteMany(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.items, id)
	}
	return nil
}

func (m *MemoryRepository) List(ctx context.Context, filter Filter) ([]*Reservation, error) {
	if filter.matchesNothing() {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Reservation, 0, len(m.items))
	for _, r := range m.items {
		if filter.includes(r.RoomName) {
			out = append(out, cloneReservation(r))
		}
	}
	sortByStart(out)
	return out, nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneReservation(r), nil
}

// InTx stages fn's writes and applies them in one step when fn succeeds.
// Callers serialize units per room; units for other rooms may commit in
// between.
func (m *MemoryRepository) InTx(ctx context.Context, roomName string, fn func(tx Repository) error) error {
	tx := &memoryTx{base: m, deleted: make(map[string]struct{})}
	if err := fn(tx); err != nil {
		return err
	}
	m.commit(tx)
	return nil
}

func (m *MemoryRepository) commit(tx *memoryTx) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range tx.deleted {
		delete(m.items, id)
	}
	for _, r := range tx.inserted {
		m.items[r.ID] = cloneReservation(r)
	}
}

// Len returns the number of live reservations.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// memoryTx overlays staged deletes and inserts on the base store.
type memoryTx struct {
	base     *MemoryRepository
	deleted  map[string]struct{}
	inserted []*Reservation
}

func (t *memoryTx) visible(rs []*Reservation) []*Reservation {
	out := rs[:0]
	for _, r := range rs {
		if _, gone := t.deleted[r.ID]; !gone {
			out = append(out, r)
		}
	}
	return out
}

func (t *memoryTx) FindOverlapping(ctx context.Context, roomName string, start, end time.Time) ([]*Reservation, error) {
	out, err := t.base.FindOverlapping(ctx, roomName, start, end)
	if err != nil {
		return nil, err
	}
	out = t.visible(out)
	for _, r := range t.inserted {
		if r.RoomName == roomName && r.Overlaps(start, end) {
			out = append(out, cloneReservation(r))
		}
	}
	sortByStart(out)
	return out, nil
}

func (t *memoryTx) Insert(ctx context.Context, r *Reservation) error {
	r.ID = uuid.NewString()
	r.CreatedAt = t.base.now()
	t.inserted = append(t.inserted, cloneReservation(r))
	return nil
}

func (t *memoryTx) DeleteMany(ctx context.Context, ids []string) error {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		t.deleted[id] = struct{}{}
		drop[id] = struct{}{}
	}

	kept := t.inserted[:0]
	for _, r := range t.inserted {
		if _, ok := drop[r.ID]; !ok {
			kept = append(kept, r)
		}
	}
	t.inserted = kept
	return nil
}

func (t *memoryTx) List(ctx context.Context, filter Filter) ([]*Reservation, error) {
	out, err := t.base.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out = t.visible(out)
	if !filter.matchesNothing() {
		for _, r := range t.inserted {
			if filter.includes(r.RoomName) {
				out = append(out, cloneReservation(r))
			}
		}
	}
	sortByStart(out)
	return out, nil
}

func (t *memoryTx) GetByID(ctx context.Context, id string) (*Reservation, error) {
	for _, r := range t.inserted {
		if r.ID == id {
			return cloneReservation(r), nil
		}
	}
	if _, gone := t.deleted[id]; gone {
		return nil, ErrNotFound
	}
	return t.base.GetByID(ctx, id)
}

func (t *memoryTx) InTx(ctx context.Context, roomName string, fn func(tx Repository) error) error {
	return fn(t)
}
