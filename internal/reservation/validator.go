package reservation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/reservut/room-reservation/internal/pkg/apperror"
	"github.com/reservut/room-reservation/internal/role"
	"github.com/reservut/room-reservation/internal/roompolicy"
	"github.com/reservut/room-reservation/internal/user"
)

// DefaultMaxDuration is the longest window a single reservation may cover.
const DefaultMaxDuration = 3 * time.Hour

// SubmitRequest is an unvalidated reservation request.
type SubmitRequest struct {
	OwnerID   string
	RoomName  string
	StartTime time.Time
	EndTime   time.Time
	// PriorityLevel is the raw requested level. Empty means the owner's
	// role level. A requested level can only lower the effective priority.
	PriorityLevel string
	Type          string
	// TimeErr records a start or end time that was supplied but could not
	// be parsed. It is reported as an invalid time range.
	TimeErr error
}

// validator runs the admission checks in order; the first failure wins.
// It never mutates state.
type validator struct {
	users       user.Service
	policies    roompolicy.Service
	priorities  role.PriorityTable
	maxDuration time.Duration
}

func newValidator(users user.Service, policies roompolicy.Service, priorities role.PriorityTable, maxDuration time.Duration) *validator {
	if priorities == nil {
		priorities = role.DefaultPriorities()
	}
	if maxDuration <= 0 {
		maxDuration = DefaultMaxDuration
	}
	return &validator{
		users:       users,
		policies:    policies,
		priorities:  priorities,
		maxDuration: maxDuration,
	}
}

// Validate returns an unpersisted candidate reservation with the owner
// attribution resolved.
func (v *validator) Validate(ctx context.Context, req SubmitRequest) (*Reservation, error) {
	ownerID := strings.TrimSpace(req.OwnerID)
	roomName := strings.TrimSpace(req.RoomName)

	// 1. Required fields; an unparsable time counts as present
	timesMissing := req.TimeErr == nil && (req.StartTime.IsZero() || req.EndTime.IsZero())
	if ownerID == "" || roomName == "" || timesMissing {
		return nil, ErrMissingField
	}

	// 2. Priority value
	requested, err := parsePriority(req.PriorityLevel)
	if err != nil {
		return nil, err
	}

	// 3. Owner resolution
	owner, err := v.users.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to resolve owner: %w", err)
	}

	// 4. Role/room authorization against the current policy
	allowed, err := v.policies.IsRoomAllowedForRole(ctx, roomName, owner.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to check room policy: %w", err)
	}
	if !allowed {
		return nil, ErrRoomNotAllowedForRole
	}

	// 5. Time range sanity
	if req.TimeErr != nil {
		return nil, apperror.Wrap(req.TimeErr, ErrInvalidTimeRange)
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}

	// 6. Duration ceiling, no role exemptions
	if req.EndTime.Sub(req.StartTime) > v.maxDuration {
		return nil, ErrDurationExceeded
	}

	level, ok := v.priorities.Level(owner.Role)
	if !ok {
		return nil, ErrInvalidPriority
	}
	if requested > 0 && requested < level {
		level = requested
	}

	summary := owner.Summary()
	kind := strings.TrimSpace(req.Type)
	if kind == "" {
		kind = DefaultType
	}

	return &Reservation{
		RoomName:      roomName,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		PriorityLevel: level,
		Type:          kind,
		OwnerID:       owner.ID,
		Owner:         &summary,
	}, nil
}

// parsePriority accepts a finite integral level >= 1. Zero is returned for
// an empty value.
func parsePriority(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidPriority
	}
	if f != math.Trunc(f) || f < 1 || f > math.MaxInt32 {
		return 0, ErrInvalidPriority
	}
	return int(f), nil
}
