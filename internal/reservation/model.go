package reservation

import (
	"net/http"
	"time"

	"github.com/reservut/room-reservation/internal/pkg/apperror"
	"github.com/reservut/room-reservation/internal/user"
)

var (
	ErrNotFound              = apperror.NewWithReason(http.StatusNotFound, "reservation_not_found", "reservation not found")
	ErrMissingField          = apperror.NewWithReason(http.StatusBadRequest, "missing_field", "owner, room, start time and end time are required")
	ErrInvalidPriority       = apperror.NewWithReason(http.StatusBadRequest, "invalid_priority", "invalid priority level")
	ErrOwnerNotFound         = apperror.NewWithReason(http.StatusNotFound, "owner_not_found", "owner not found")
	ErrRoomNotAllowedForRole = apperror.NewWithReason(http.StatusForbidden, "room_not_allowed_for_role", "this role is not allowed to reserve this room")
	ErrInvalidTimeRange      = apperror.NewWithReason(http.StatusBadRequest, "invalid_time_range", "end time must be after start time")
	ErrDurationExceeded      = apperror.NewWithReason(http.StatusBadRequest, "duration_exceeded", "reservation exceeds the maximum duration")
	ErrConflict              = apperror.NewWithReason(http.StatusConflict, "conflict", "the slot is held by a reservation of higher or equal priority")
	ErrRoomBusy              = apperror.NewWithReason(http.StatusServiceUnavailable, "room_busy", "the room is being reserved by another request, try again")
)

// DefaultType labels reservations submitted without a title.
const DefaultType = "New Reservation"

// Reservation is a live booking of a room for a half-open time window
// [StartTime, EndTime). Reservations are never updated once admitted.
type Reservation struct {
	ID            string
	RoomName      string
	StartTime     time.Time
	EndTime       time.Time
	PriorityLevel int
	Type          string
	OwnerID       string
	Owner         *user.Summary // resolved attribution, nil if the owner is gone
	CreatedAt     time.Time
}

// Overlaps reports whether r intersects [start, end). Touching endpoints do
// not overlap.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && r.EndTime.After(start)
}

// Duration is the length of the reserved window.
func (r *Reservation) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Filter selects live reservations.
type Filter struct {
	// Rooms restricts results to the named rooms. Nil means every room;
	// an empty non-nil slice matches nothing.
	Rooms []string
}

func (f Filter) matchesNothing() bool {
	return f.Rooms != nil && len(f.Rooms) == 0
}

func (f Filter) includes(room string) bool {
	if f.Rooms == nil {
		return true
	}
	for _, r := range f.Rooms {
		if r == room {
			return true
		}
	}
	return false
}
