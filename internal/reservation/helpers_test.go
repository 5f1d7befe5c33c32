package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reservut/room-reservation/internal/role"
	"github.com/reservut/room-reservation/internal/roompolicy"
	"github.com/reservut/room-reservation/internal/user"
)

// base is a fixed Monday morning used by every scenario.
var base = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return base.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type testEngine struct {
	svc      Service
	repo     *MemoryRepository
	users    user.Service
	policies roompolicy.Service
	owners   map[role.Role]*user.User
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	return newTestEngineWithRepo(t, nil)
}

// newTestEngineWithRepo builds an engine over repo, or over a fresh memory
// store when repo is nil. One user per role is logged in.
func newTestEngineWithRepo(t *testing.T, repo Repository) *testEngine {
	t.Helper()
	ctx := context.Background()

	mem := NewMemoryRepository()
	if repo == nil {
		repo = mem
	}

	users := user.NewService(user.NewMemoryRepository(), nil, nil)
	rooms := append(roompolicy.DefaultPolicies(),
		roompolicy.Policy{Name: "R1", AllowedRoles: role.All},
		roompolicy.Policy{Name: "R2", AllowedRoles: role.All},
	)
	policies := roompolicy.NewService(roompolicy.NewMemoryRepository(rooms), nil)

	owners := make(map[role.Role]*user.User, len(role.All))
	for _, r := range role.All {
		u, err := users.Login(ctx, string(r)+"@vut.cz", string(r))
		require.NoError(t, err)
		owners[r] = u
	}

	svc := NewService(repo, NewLocalLocker(), users, policies, Config{
		MaxDuration: DefaultMaxDuration,
		Priorities:  role.DefaultPriorities(),
	}, nil)

	return &testEngine{
		svc:      svc,
		repo:     mem,
		users:    users,
		policies: policies,
		owners:   owners,
	}
}

func (e *testEngine) request(r role.Role, room string, start, end time.Time) SubmitRequest {
	return SubmitRequest{
		OwnerID:   e.owners[r].ID,
		RoomName:  room,
		StartTime: start,
		EndTime:   end,
	}
}

func (e *testEngine) submit(t *testing.T, r role.Role, room string, start, end time.Time) (*Reservation, error) {
	t.Helper()
	return e.svc.Submit(context.Background(), e.request(r, room, start, end))
}

func (e *testEngine) list(t *testing.T, filter ListFilter) []*Reservation {
	t.Helper()
	items, err := e.svc.List(context.Background(), filter)
	require.NoError(t, err)
	return items
}

func ids(rs []*Reservation) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
