package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reservut/room-reservation/internal/role"
	"github.com/reservut/room-reservation/internal/roompolicy"
	"github.com/reservut/room-reservation/internal/user"
)

// ListFilter narrows List results.
type ListFilter struct {
	// RoomName limits results to one room.
	RoomName string
	// VisibleTo limits results to rooms the role may book.
	VisibleTo role.Role
}

type Service interface {
	// Submit validates req and admits it, evicting lower-priority
	// overlapping reservations when it pre-empts them.
	Submit(ctx context.Context, req SubmitRequest) (*Reservation, error)
	// List returns live reservations ascending by start time.
	List(ctx context.Context, filter ListFilter) ([]*Reservation, error)
	GetByID(ctx context.Context, id string) (*Reservation, error)
}

// Config holds the engine's policy knobs.
type Config struct {
	MaxDuration time.Duration
	Priorities  role.PriorityTable
}

type service struct {
	repo      Repository
	locker    Locker
	users     user.Service
	policies  roompolicy.Service
	validator *validator
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	locker Locker,
	users user.Service,
	policies roompolicy.Service,
	cfg Config,
	logger *slog.Logger,
) Service {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:      repo,
		locker:    locker,
		users:     users,
		policies:  policies,
		validator: newValidator(users, policies, cfg.Priorities, cfg.MaxDuration),
		logger:    logger.With("service", "reservation"),
	}
}

func (s *service) Submit(ctx context.Context, req SubmitRequest) (*Reservation, error) {
	logger := s.logger.With("operation", "submit", "owner_id", req.OwnerID, "room", req.RoomName)

	candidate, err := s.validator.Validate(ctx, req)
	if err != nil {
		logger.DebugContext(ctx, "reservation rejected", "kind", KindOf(err), "error", err)
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, candidate.RoomName)
	if err != nil {
		logger.WarnContext(ctx, "room lock not acquired", "error", err)
		return nil, err
	}
	defer unlock()

	var decision Decision
	err = s.repo.InTx(ctx, candidate.RoomName, func(tx Repository) error {
		overlaps, err := tx.FindOverlapping(ctx, candidate.RoomName, candidate.StartTime, candidate.EndTime)
		if err != nil {
			return err
		}

		decision = Resolve(candidate, overlaps)
		if !decision.Admit {
			return ErrConflict
		}

		if len(decision.Evict) > 0 {
			if err := tx.DeleteMany(ctx, decision.EvictIDs()); err != nil {
				return err
			}
		}
		return tx.Insert(ctx, candidate)
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			logger.DebugContext(ctx, "reservation conflicts with higher or equal priority",
				"priority", candidate.PriorityLevel,
				"max_existing_priority", decision.MaxExistingPriority)
			return nil, err
		}
		logger.ErrorContext(ctx, "reservation admission failed", "error", err)
		return nil, fmt.Errorf("failed to admit reservation: %w", err)
	}

	if len(decision.Evict) > 0 {
		logger.InfoContext(ctx, "priority override evicted reservations",
			"reservation_id", candidate.ID,
			"priority", candidate.PriorityLevel,
			"max_existing_priority", decision.MaxExistingPriority,
			"evicted_ids", decision.EvictIDs())
	}

	return candidate, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]*Reservation, error) {
	var f Filter
	if filter.VisibleTo != "" {
		rooms, err := s.policies.RoomsForRole(ctx, filter.VisibleTo)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve visible rooms: %w", err)
		}
		if rooms == nil {
			rooms = []string{}
		}
		f.Rooms = rooms
	}
	if filter.RoomName != "" {
		if f.includes(filter.RoomName) {
			f.Rooms = []string{filter.RoomName}
		} else {
			f.Rooms = []string{}
		}
	}

	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.attachOwners(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachOwners(ctx, []*Reservation{r}); err != nil {
		return nil, err
	}
	return r, nil
}

// attachOwners resolves owner attribution. Owners that no longer exist are
// left nil.
func (s *service) attachOwners(ctx context.Context, items []*Reservation) error {
	resolved := make(map[string]*user.Summary)
	for _, r := range items {
		summary, seen := resolved[r.OwnerID]
		if !seen {
			u, err := s.users.GetByID(ctx, r.OwnerID)
			switch {
			case err == nil:
				sum := u.Summary()
				summary = &sum
			case errors.Is(err, user.ErrNotFound):
				summary = nil
			default:
				return fmt.Errorf("failed to resolve reservation owner: %w", err)
			}
			resolved[r.OwnerID] = summary
		}
		r.Owner = summary
	}
	return nil
}
