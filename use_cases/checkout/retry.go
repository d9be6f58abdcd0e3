package checkout

import (
	"context"
	"math"
	"time"

	"github.com/giovaniif/motorent/protocols"
)

type RetryFunc[T any] func(ctx context.Context) (T, error)

// RetryWithBackoff runs operation up to MAX_RETRIES times, doubling the wait
// after each failure. Errors that shouldRetry rejects are returned at once.
func RetryWithBackoff[T any](ctx context.Context, sleeper protocols.Sleeper, shouldRetry func(error) bool, operation RetryFunc[T]) (T, error) {
	var zero T
	var lastError error
	for i := 0; i < MAX_RETRIES; i++ {
		val, err := operation(ctx)
		if err == nil {
			return val, nil
		}
		lastError = err
		if !shouldRetry(err) || i == MAX_RETRIES-1 {
			break
		}
		delay := time.Duration(math.Pow(2, float64(i))) * BASE_DELAY
		if err := sleeper.Sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
	return zero, lastError
}
