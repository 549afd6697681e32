package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/api-sage/wallet-ledger-engine/internal/cache"
	"github.com/api-sage/wallet-ledger-engine/internal/cache/lru"
	"github.com/api-sage/wallet-ledger-engine/internal/domain"
	"github.com/api-sage/wallet-ledger-engine/internal/logger"
	"github.com/api-sage/wallet-ledger-engine/internal/metrics"
	"github.com/api-sage/wallet-ledger-engine/internal/resilience"
)

const accountKeyPrefix = "account:"

func accountKey(accountID string) string {
	return accountKeyPrefix + accountID
}

// TieredCache glues the process-local LRU to the shared remote cache. Remote
// failures degrade: they are logged and counted, never propagated, so a cache
// outage reduces to store-only reads.
type TieredCache struct {
	local   *lru.Cache[string, domain.Account]
	remote  cache.Remote
	breaker *resilience.Breaker
	ttl     time.Duration
}

func NewTieredCache(local *lru.Cache[string, domain.Account], remote cache.Remote, breaker *resilience.Breaker, ttl time.Duration) *TieredCache {
	return &TieredCache{local: local, remote: remote, breaker: breaker, ttl: ttl}
}

func (c *TieredCache) getLocal(accountID string) (domain.Account, bool) {
	account, ok := c.local.Get(accountKey(accountID))
	if ok {
		metrics.RecordCacheRequest("local", "hit")
	} else {
		metrics.RecordCacheRequest("local", "miss")
	}
	return account, ok
}

func (c *TieredCache) getRemote(ctx context.Context, accountID string) (domain.Account, bool) {
	key := accountKey(accountID)

	var raw []byte
	var found bool
	err := c.breaker.Execute(func() error {
		var err error
		raw, found, err = c.remote.Get(ctx, key)
		return err
	})
	if err != nil {
		metrics.RecordCacheFailure("get")
		logger.Warn("remote cache get degraded", logger.Fields{"key": key, "error": err.Error()})
		return domain.Account{}, false
	}
	if !found {
		metrics.RecordCacheRequest("remote", "miss")
		return domain.Account{}, false
	}

	var account domain.Account
	if err := json.Unmarshal(raw, &account); err != nil {
		metrics.RecordCacheFailure("decode")
		logger.Warn("remote cache entry corrupt, dropping", logger.Fields{"key": key})
		c.drop(ctx, accountID)
		return domain.Account{}, false
	}

	metrics.RecordCacheRequest("remote", "hit")
	c.local.Set(key, account)
	return account, true
}

// prime populates both tiers after a store read or a successful write.
func (c *TieredCache) prime(ctx context.Context, account domain.Account) {
	key := accountKey(account.ID)
	c.local.Set(key, account)

	raw, err := json.Marshal(account)
	if err != nil {
		metrics.RecordCacheFailure("encode")
		return
	}
	if err := c.breaker.Execute(func() error {
		return c.remote.SetTTL(ctx, key, raw, c.ttl)
	}); err != nil {
		metrics.RecordCacheFailure("set")
		logger.Warn("remote cache set degraded", logger.Fields{"key": key, "error": err.Error()})
	}
}

// invalidate removes both tiers for an account. It must run synchronously as
// part of every successful write, before the result returns to the caller; a
// remote delete failure is surfaced in logs and metrics only, since rolling
// back a committed ledger write for a cache error is never acceptable.
func (c *TieredCache) invalidate(ctx context.Context, accountID string) {
	c.drop(ctx, accountID)
}

func (c *TieredCache) drop(ctx context.Context, accountID string) {
	key := accountKey(accountID)
	c.local.Delete(key)

	if err := c.breaker.Execute(func() error {
		return c.remote.Delete(ctx, key)
	}); err != nil {
		metrics.RecordCacheFailure("delete")
		logger.Error("remote cache invalidation failed, stale reads possible until TTL expiry", err, logger.Fields{
			"key": key,
		})
	}
}

// recordAccess bumps the hot-key score for an account read. Approximate and
// best effort.
func (c *TieredCache) recordAccess(ctx context.Context, accountID string) {
	if err := c.breaker.Execute(func() error {
		return c.remote.IncrementScore(ctx, cache.HotKeySet, accountKey(accountID))
	}); err != nil {
		metrics.RecordCacheFailure("hot_key")
	}
}

func (c *TieredCache) topHotKeys(ctx context.Context, limit int) ([]string, error) {
	var keys []string
	err := c.breaker.Execute(func() error {
		var err error
		keys, err = c.remote.TopScores(ctx, cache.HotKeySet, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
