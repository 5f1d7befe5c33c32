package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/reservut/room-reservation/internal/pkg/fallback"
)

// FallbackRepository serves users from primary and substitutes secondary
// while primary is unavailable. Lookups that miss in primary also consult
// secondary, so users created during an outage stay resolvable.
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
		logger:    logger.With("repository", "user"),
	}
}

func (r *FallbackRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.lookup(ctx, "user.GetByEmail",
		func(repo Repository) func(context.Context) (*User, error) {
			return func(ctx context.Context) (*User, error) { return repo.GetByEmail(ctx, email) }
		})
}

func (r *FallbackRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.lookup(ctx, "user.GetByID",
		func(repo Repository) func(context.Context) (*User, error) {
			return func(ctx context.Context) (*User, error) { return repo.GetByID(ctx, id) }
		})
}

func (r *FallbackRepository) lookup(
	ctx context.Context,
	op string,
	bind func(Repository) func(context.Context) (*User, error),
) (*User, error) {
	var primary func(context.Context) (*User, error)
	if r.primary != nil {
		primary = bind(r.primary)
	}
	u, err := fallback.Call(ctx, r.logger, op, primary, bind(r.secondary))
	if errors.Is(err, ErrNotFound) && r.primary != nil {
		return bind(r.secondary)(ctx)
	}
	return u, err
}

func (r *FallbackRepository) Create(ctx context.Context, u *User) error {
	var primary func(context.Context) error
	if r.primary != nil {
		primary = func(ctx context.Context) error { return r.primary.Create(ctx, u) }
	}
	return fallback.Exec(ctx, r.logger, "user.Create", primary,
		func(ctx context.Context) error { return r.secondary.Create(ctx, u) })
}

func (r *FallbackRepository) Update(ctx context.Context, u *User) error {
	var primary func(context.Context) error
	if r.primary != nil {
		primary = func(ctx context.Context) error { return r.primary.Update(ctx, u) }
	}
	err := fallback.Exec(ctx, r.logger, "user.Update", primary,
		func(ctx context.Context) error { return r.secondary.Update(ctx, u) })
	if errors.Is(err, ErrNotFound) && r.primary != nil {
		// The user may only exist in the fallback store.
		return r.secondary.Update(ctx, u)
	}
	return err
}
