// Package cache defines the shared remote-cache contract backing the
// process-local LRU tier. Implementations use atomic single-key operations
// only; no external locking is required of callers.
package cache

import (
	"context"
	"time"
)

// HotKeySet is the sorted set tracking per-key read frequency.
const HotKeySet = "hot_keys"

type Remote interface {
	// Get returns the cached value; the second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// IncrementScore bumps member's score inside the named sorted set.
	IncrementScore(ctx context.Context, set, member string) error
	// TopScores returns up to limit members ordered by descending score.
	TopScores(ctx context.Context, set string, limit int) ([]string, error)
}
