package reservation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryInTx(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*MemoryRepository, *Reservation) {
		repo := NewMemoryRepository()
		r := &Reservation{RoomName: "R1", StartTime: at(1, 0), EndTime: at(2, 0), PriorityLevel: 1}
		require.NoError(t, repo.Insert(ctx, r))
		return repo, r
	}

	t.Run("Commit Applies Staged Writes", func(t *testing.T) {
		repo, old := seed(t)
		fresh := &Reservation{RoomName: "R1", StartTime: at(1, 30), EndTime: at(2, 30), PriorityLevel: 3}

		err := repo.InTx(ctx, "R1", func(tx Repository) error {
			require.NoError(t, tx.DeleteMany(ctx, []string{old.ID}))
			require.NoError(t, tx.Insert(ctx, fresh))

			// Staged state is visible inside the unit only.
			inside, err := tx.FindOverlapping(ctx, "R1", at(0, 0), at(5, 0))
			require.NoError(t, err)
			assert.Equal(t, []string{fresh.ID}, ids(inside))

			outside, err := repo.List(ctx, Filter{})
			require.NoError(t, err)
			assert.Equal(t, []string{old.ID}, ids(outside))
			return nil
		})
		require.NoError(t, err)

		live, err := repo.List(ctx, Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{fresh.ID}, ids(live))

		_, err = repo.GetByID(ctx, old.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Error Discards Staged Writes", func(t *testing.T) {
		repo, old := seed(t)
		boom := errors.New("boom")

		err := repo.InTx(ctx, "R1", func(tx Repository) error {
			require.NoError(t, tx.DeleteMany(ctx, []string{old.ID}))
			require.NoError(t, tx.Insert(ctx, &Reservation{RoomName: "R1", StartTime: at(1, 0), EndTime: at(2, 0)}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		live, err := repo.List(ctx, Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{old.ID}, ids(live))
	})

	t.Run("Filter", func(t *testing.T) {
		repo, old := seed(t)
		other := &Reservation{RoomName: "R2", StartTime: at(0, 0), EndTime: at(1, 0)}
		require.NoError(t, repo.Insert(ctx, other))

		all, err := repo.List(ctx, Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{other.ID, old.ID}, ids(all))

		none, err := repo.List(ctx, Filter{Rooms: []string{}})
		require.NoError(t, err)
		assert.Empty(t, none)

		r2, err := repo.List(ctx, Filter{Rooms: []string{"R2"}})
		require.NoError(t, err)
		assert.Equal(t, []string{other.ID}, ids(r2))
	})

	t.Run("Returned Values Are Copies", func(t *testing.T) {
		repo, old := seed(t)

		got, err := repo.GetByID(ctx, old.ID)
		require.NoError(t, err)
		got.RoomName = "tampered"

		again, err := repo.GetByID(ctx, old.ID)
		require.NoError(t, err)
		assert.Equal(t, "R1", again.RoomName)
	})
}
