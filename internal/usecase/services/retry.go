package services

import (
	"context"
	"errors"
	"time"

	"github.com/api-sage/wallet-ledger-engine/internal/domain"
)

const retryBackoff = 50 * time.Millisecond

// withRetry re-runs operation only for store-level conflicts, with linear
// backoff. Every other error class returns immediately.
func withRetry(ctx context.Context, maxAttempts int, operation func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = operation()
		if err == nil || !errors.Is(err, domain.ErrConcurrentModification) {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return err
}
