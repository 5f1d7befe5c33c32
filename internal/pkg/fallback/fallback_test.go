package fallback

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservut/room-reservation/internal/pkg/apperror"
)

func TestCall(t *testing.T) {
	ctx := context.Background()
	secondaryCalls := 0
	secondary := func(context.Context) (string, error) {
		secondaryCalls++
		return "memory", nil
	}

	t.Run("Primary Success", func(t *testing.T) {
		secondaryCalls = 0
		v, err := Call(ctx, nil, "op", func(context.Context) (string, error) { return "db", nil }, secondary)
		require.NoError(t, err)
		assert.Equal(t, "db", v)
		assert.Zero(t, secondaryCalls)
	})

	t.Run("Storage Failure Falls Back", func(t *testing.T) {
		secondaryCalls = 0
		v, err := Call(ctx, nil, "op", func(context.Context) (string, error) {
			return "", errors.New("connection refused")
		}, secondary)
		require.NoError(t, err)
		assert.Equal(t, "memory", v)
		assert.Equal(t, 1, secondaryCalls)
	})

	t.Run("Domain Error Is Final", func(t *testing.T) {
		secondaryCalls = 0
		domainErr := apperror.New(http.StatusConflict, "taken")
		_, err := Call(ctx, nil, "op", func(context.Context) (string, error) {
			return "", domainErr
		}, secondary)
		assert.ErrorIs(t, err, domainErr)
		assert.Zero(t, secondaryCalls)
	})

	t.Run("Cancelled Context Is Final", func(t *testing.T) {
		secondaryCalls = 0
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Call(cctx, nil, "op", func(ctx context.Context) (string, error) {
			return "", ctx.Err()
		}, secondary)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, secondaryCalls)
	})

	t.Run("No Primary", func(t *testing.T) {
		secondaryCalls = 0
		v, err := Call[string](ctx, nil, "op", nil, secondary)
		require.NoError(t, err)
		assert.Equal(t, "memory", v)
		assert.Equal(t, 1, secondaryCalls)
	})
}

func TestExec(t *testing.T) {
	ctx := context.Background()
	ran := false
	err := Exec(ctx, nil, "op",
		func(context.Context) error { return errors.New("timeout") },
		func(context.Context) error { ran = true; return nil },
	)
	require.NoError(t, err)
	assert.True(t, ran)
}
