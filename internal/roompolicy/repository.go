package roompolicy

import (
	"context"
	"sync"
)

// Repository stores the current room policy set.
type Repository interface {
	List(ctx context.Context) ([]Policy, error)
	Replace(ctx context.Context, policies []Policy) error
}

type memoryRepository struct {
	mu       sync.RWMutex
	policies []Policy
}

// NewMemoryRepository creates a Repository holding initial.
func NewMemoryRepository(initial []Policy) Repository {
	return &memoryRepository{policies: clonePolicies(initial)}
}

func (r *memoryRepository) List(ctx context.Context) ([]Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clonePolicies(r.policies), nil
}

func (r *memoryRepository) Replace(ctx context.Context, policies []Policy) error {
	cloned := clonePolicies(policies)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies = cloned
	return nil
}
