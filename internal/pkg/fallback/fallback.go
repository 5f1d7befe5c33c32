// Package fallback runs storage operations against a primary backend and
// repeats them against a secondary backend when the primary is unavailable.
package fallback

import (
	"context"
	"errors"
	"log/slog"

	"github.com/reservut/room-reservation/internal/pkg/apperror"
)

// ShouldFallback reports whether err from the primary backend warrants
// retrying the operation against the secondary one. Domain errors and
// caller cancellation are final.
func ShouldFallback(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return false
	}
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return false
	}
	return true
}

// Call runs primary and, if it fails with a storage-level error, secondary.
// A nil primary means only the secondary backend is configured.
func Call[T any](
	ctx context.Context,
	logger *slog.Logger,
	op string,
	primary func(context.Context) (T, error),
	secondary func(context.Context) (T, error),
) (T, error) {
	if primary == nil {
		return secondary(ctx)
	}

	v, err := primary(ctx)
	if !ShouldFallback(ctx, err) {
		return v, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, "primary store unavailable, using fallback store",
		"operation", op, "error", err)

	return secondary(ctx)
}

// Exec is Call for operations that only return an error.
func Exec(
	ctx context.Context,
	logger *slog.Logger,
	op string,
	primary func(context.Context) error,
	secondary func(context.Context) error,
) error {
	wrap := func(fn func(context.Context) error) func(context.Context) (struct{}, error) {
		if fn == nil {
			return nil
		}
		return func(ctx context.Context) (struct{}, error) {
			return struct{}{}, fn(ctx)
		}
	}
	_, err := Call(ctx, logger, op, wrap(primary), wrap(secondary))
	return err
}
