package application

import (
	"context"
	"errors"

	"github.com/mes-platform/production-service/internal/domain"
)

// ConflictRetryAttempts bounds the reload-and-reapply loop on optimistic
// concurrency conflicts.
const ConflictRetryAttempts = 3

// WithConflictRetry runs fn until it succeeds, fails with a non-conflict
// error, or the attempts are exhausted. fn must reload its aggregate on
// every call so a retry reapplies against fresh state.
func WithConflictRetry[T any](ctx context.Context, attempts int, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return zero, err
		}
		lastErr = err
	}

	return zero, lastErr
}
