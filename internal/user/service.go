package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/reservut/room-reservation/internal/role"
)

// Service defines business logic related to users.
type Service interface {
	// Login upserts the user identified by email with the given role.
	Login(ctx context.Context, email, roleName string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type service struct {
	repo           Repository
	allowedDomains []string
	logger         *slog.Logger

	maxVutIDAttempts int
}

// NewService creates a new user Service. allowedDomains restricts login
// e-mail addresses; an empty list accepts any domain.
func NewService(repo Repository, allowedDomains []string, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	domains := make([]string, 0, len(allowedDomains))
	for _, d := range allowedDomains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d != "" {
			domains = append(domains, d)
		}
	}
	return &service{
		repo:             repo,
		allowedDomains:   domains,
		logger:           logger.With("service", "user"),
		maxVutIDAttempts: 50,
	}
}

func (s *service) Login(ctx context.Context, email, roleName string) (*User, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" {
		return nil, ErrEmailRequired
	}
	if !s.domainAllowed(cleanEmail) {
		return nil, ErrEmailDomain
	}

	r, err := role.Parse(roleName)
	if err != nil {
		return nil, ErrInvalidRole
	}

	existing, err := s.repo.GetByEmail(ctx, cleanEmail)
	switch {
	case err == nil:
		return s.assignRole(ctx, existing, r)
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}

	base := buildVutID(cleanEmail)
	for attempt := 1; attempt <= s.maxVutIDAttempts; attempt++ {
		vutID := base
		if attempt > 1 {
			vutID = fmt.Sprintf("%s-%d", base, attempt)
		}

		u := &User{
			Email:      cleanEmail,
			VutID:      vutID,
			Role:       r,
			IsVerified: verifiedOnLogin(r),
		}

		err := s.repo.Create(ctx, u)
		switch {
		case err == nil:
			s.logger.InfoContext(ctx, "user created", "user_id", u.ID, "role", u.Role)
			return u, nil
		case errors.Is(err, ErrVutIDAlreadyUsed):
			continue
		case errors.Is(err, ErrEmailAlreadyUsed):
			// Lost a race with a concurrent login for the same address.
			existing, getErr := s.repo.GetByEmail(ctx, cleanEmail)
			if getErr != nil {
				return nil, err
			}
			return s.assignRole(ctx, existing, r)
		default:
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}
	return nil, ErrVutIDExhausted
}

func (s *service) assignRole(ctx context.Context, u *User, r role.Role) (*User, error) {
	u.Role = r
	u.IsVerified = verifiedOnLogin(r)
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) domainAllowed(email string) bool {
	if len(s.allowedDomains) == 0 {
		return true
	}
	for _, d := range s.allowedDomains {
		if strings.HasSuffix(email, "@"+d) {
			return true
		}
	}
	return false
}

// normalizeEmail trims spaces and lowercases the email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var vutIDUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// buildVutID derives the institutional id prefix from the local part.
func buildVutID(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = vutIDUnsafe.ReplaceAllString(local, "")
	if local == "" {
		local = "user"
	}
	return "vut-" + local
}
