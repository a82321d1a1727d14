package errors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samnasalta/orderbot-backend/pkg/logger"
)

// ErrRetryExhausted marks a transient failure that persisted past every
// attempt. Callers can distinguish "still might succeed later" from
// "definitely failed" with errors.Is.
var ErrRetryExhausted = errors.New("retry attempts exhausted")

const (
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 500 * time.Millisecond
)

// Retry runs fn up to attempts times, doubling delay between tries. Only
// transient errors (connection loss, deadlock, lock timeout) are retried;
// everything else — not-found, validation, integrity violations — returns on
// the first attempt. Meant to wrap individual persistence calls, not business
// logic.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if Classify(err) != CategoryTransient {
			return err
		}
		if attempt == attempts {
			break
		}

		logger.Warn("Transient database error, retrying", map[string]interface{}{
			"attempt":     attempt,
			"max":         attempts,
			"retry_in_ms": delay.Milliseconds(),
			"error":       err.Error(),
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("%w: %w", ErrRetryExhausted, err)
}
