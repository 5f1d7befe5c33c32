package roompolicy

import (
	"context"
	"log/slog"

	"github.com/reservut/room-reservation/internal/role"
)

// Service is the room access policy consumed by the reservation engine.
// Every call reads the current policy set; nothing is cached.
type Service interface {
	List(ctx context.Context) ([]Policy, error)
	// Replace sanitizes and stores policies. Input that sanitizes to nothing
	// leaves the current set untouched. Returns the resulting set.
	Replace(ctx context.Context, policies []Policy) ([]Policy, error)
	IsRoomAllowedForRole(ctx context.Context, roomName string, r role.Role) (bool, error)
	RoomsForRole(ctx context.Context, r role.Role) ([]string, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new room policy Service.
func NewService(repo Repository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:   repo,
		logger: logger.With("service", "roompolicy"),
	}
}

func (s *service) List(ctx context.Context) ([]Policy, error) {
	return s.repo.List(ctx)
}

func (s *service) Replace(ctx context.Context, policies []Policy) ([]Policy, error) {
	if policies == nil {
		return nil, ErrEmptyPolicies
	}

	clean := Sanitize(policies)
	if len(clean) == 0 {
		s.logger.WarnContext(ctx, "policy replace ignored, nothing usable after sanitizing",
			"submitted", len(policies))
		return s.repo.List(ctx)
	}

	if err := s.repo.Replace(ctx, clean); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "room policies replaced", "rooms", len(clean))
	return clean, nil
}

func (s *service) IsRoomAllowedForRole(ctx context.Context, roomName string, r role.Role) (bool, error) {
	policies, err := s.repo.List(ctx)
	if err != nil {
		return false, err
	}
	for _, p := range policies {
		if p.Name == roomName {
			return p.Allows(r), nil
		}
	}
	return false, nil
}

func (s *service) RoomsForRole(ctx context.Context, r role.Role) ([]string, error) {
	policies, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]string, 0, len(policies))
	for _, p := range policies {
		if p.Allows(r) {
			rooms = append(rooms, p.Name)
		}
	}
	return rooms, nil
}
