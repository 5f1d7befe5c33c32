package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservut/room-reservation/internal/role"
)

func decodeBody(t *testing.T, raw string) CreateReservationBody {
	t.Helper()
	var b CreateReservationBody
	require.NoError(t, json.Unmarshal([]byte(raw), &b))
	return b
}

func TestToSubmitRequest(t *testing.T) {
	t.Run("Canonical Fields", func(t *testing.T) {
		b := decodeBody(t, `{
			"room_name": "Meeting Room",
			"start_time": "2025-03-03T10:00:00+01:00",
			"end_time": "2025-03-03T11:00:00+01:00",
			"priority_level": 2,
			"type": "Lecture"
		}`)

		req := b.ToSubmitRequest("user-1")
		require.NoError(t, req.TimeErr)
		assert.Equal(t, "user-1", req.OwnerID)
		assert.Equal(t, "Meeting Room", req.RoomName)
		assert.Equal(t, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), req.StartTime)
		assert.Equal(t, time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), req.EndTime)
		assert.Equal(t, "2", req.PriorityLevel)
		assert.Equal(t, "Lecture", req.Type)
	})

	t.Run("Aliases", func(t *testing.T) {
		b := decodeBody(t, `{
			"room_id": "P159",
			"start_time": "2025-03-03T10:00:00Z",
			"end_time": "2025-03-03T11:00:00Z",
			"priority": "3",
			"title": "Board"
		}`)

		req := b.ToSubmitRequest("user-1")
		require.NoError(t, req.TimeErr)
		assert.Equal(t, "P159", req.RoomName)
		assert.Equal(t, "3", req.PriorityLevel)
		assert.Equal(t, "Board", req.Type)
	})

	t.Run("Absent Values", func(t *testing.T) {
		body := decodeBody(t, `{"priority_level": null}`)
		req := body.ToSubmitRequest("user-1")
		require.NoError(t, req.TimeErr)
		assert.Empty(t, req.RoomName)
		assert.True(t, req.StartTime.IsZero())
		assert.True(t, req.EndTime.IsZero())
		assert.Empty(t, req.PriorityLevel)
	})

	t.Run("Blank Priority Is Not Absent", func(t *testing.T) {
		body := decodeBody(t, `{"priority_level": ""}`)
		req := body.ToSubmitRequest("user-1")
		assert.Equal(t, `""`, req.PriorityLevel)
	})

	t.Run("Unparsable Time", func(t *testing.T) {
		body := decodeBody(t, `{"start_time": "tomorrow", "end_time": "2025-03-03T11:00:00Z"}`)
		req := body.ToSubmitRequest("user-1")
		require.Error(t, req.TimeErr)
		assert.True(t, req.StartTime.IsZero())
		assert.Equal(t, time.Date(2025, 3, 3, 11, 0, 0, 0, time.UTC), req.EndTime)

		var parseErr *time.ParseError
		assert.ErrorAs(t, req.TimeErr, &parseErr)
	})
}

func TestListReservationsRequestValidate(t *testing.T) {
	r, err := (&ListReservationsRequest{}).Validate()
	require.NoError(t, err)
	assert.Empty(t, r)

	r, err = (&ListReservationsRequest{Role: "head admin"}).Validate()
	require.NoError(t, err)
	assert.Equal(t, role.HeadAdmin, r)

	_, err = (&ListReservationsRequest{Role: "janitor"}).Validate()
	assert.ErrorIs(t, err, role.ErrUnknownRole)
}
