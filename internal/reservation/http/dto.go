package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/reservut/room-reservation/internal/reservation"
	"github.com/reservut/room-reservation/internal/role"
)

// ListReservationsRequest defines query parameters for listing reservations.
type ListReservationsRequest struct {
	Room string `form:"room"`
	Role string `form:"role"`
}

// Validate performs custom validation for ListReservationsRequest.
func (r *ListReservationsRequest) Validate() (role.Role, error) {
	if strings.TrimSpace(r.Role) == "" {
		return "", nil
	}
	return role.Parse(r.Role)
}

// OwnerTag is the owner attribution embedded in reservation responses.
type OwnerTag struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type ReservationResponse struct {
	ID            string    `json:"id"`
	RoomName      string    `json:"room_name"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	PriorityLevel int       `json:"priority_level"`
	Type          string    `json:"type"`
	UserID        string    `json:"user_id"`
	User          *OwnerTag `json:"user"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewReservationResponse(r *reservation.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:            r.ID,
		RoomName:      r.RoomName,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		PriorityLevel: r.PriorityLevel,
		Type:          r.Type,
		UserID:        r.OwnerID,
		CreatedAt:     r.CreatedAt,
	}
	if r.Owner != nil {
		resp.User = &OwnerTag{ID: r.Owner.ID, Email: r.Owner.Email, Role: string(r.Owner.Role)}
	}
	return resp
}

// CreateReservationBody is the submission payload. Aliases (room_id, title,
// priority) are accepted for older clients.
type CreateReservationBody struct {
	RoomName      string          `json:"room_name"`
	RoomID        string          `json:"room_id"`
	StartTime     string          `json:"start_time"`
	EndTime       string          `json:"end_time"`
	PriorityLevel json.RawMessage `json:"priority_level"`
	Priority      json.RawMessage `json:"priority"`
	Type          string          `json:"type"`
	Title         string          `json:"title"`
}

// ToSubmitRequest maps the body onto the engine request. Blank times stay
// zero so the engine reports them as missing; unparsable times are carried
// in TimeErr for the engine to report in order.
func (b *CreateReservationBody) ToSubmitRequest(ownerID string) reservation.SubmitRequest {
	req := reservation.SubmitRequest{
		OwnerID:       ownerID,
		RoomName:      firstNonEmpty(b.RoomName, b.RoomID),
		PriorityLevel: rawNumber(b.PriorityLevel),
		Type:          firstNonEmpty(b.Type, b.Title),
	}
	if req.PriorityLevel == "" {
		req.PriorityLevel = rawNumber(b.Priority)
	}

	var startErr, endErr error
	req.StartTime, startErr = parseTime(b.StartTime)
	req.EndTime, endErr = parseTime(b.EndTime)
	req.TimeErr = errors.Join(startErr, endErr)
	return req
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// rawNumber returns the textual form of a JSON number or string value.
// null and absent values are empty; other JSON types are returned as-is
// so the engine rejects them.
func rawNumber(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			// Present but blank is not a number.
			return string(raw)
		}
		return s
	}
	return string(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
