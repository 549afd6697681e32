package services

import (
	"context"
	"time"

	"github.com/api-sage/wallet-ledger-engine/internal/adapter/http/models"
	"github.com/api-sage/wallet-ledger-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-ledger-engine/internal/commons"
	"github.com/api-sage/wallet-ledger-engine/internal/logger"
	"github.com/api-sage/wallet-ledger-engine/internal/metrics"
	"github.com/api-sage/wallet-ledger-engine/internal/ranker"
	"github.com/api-sage/wallet-ledger-engine/internal/resilience"
)

type LeaderboardService struct {
	accountRepo  repo_interfaces.AccountRepository
	rank         *ranker.TopK
	rankSize     int
	maxStale     time.Duration
	storeBreaker *resilience.Breaker
}

func NewLeaderboardService(
	accountRepo repo_interfaces.AccountRepository,
	rank *ranker.TopK,
	rankSize int,
	maxStale time.Duration,
	storeBreaker *resilience.Breaker,
) *LeaderboardService {
	return &LeaderboardService{
		accountRepo:  accountRepo,
		rank:         rank,
		rankSize:     rankSize,
		maxStale:     maxStale,
		storeBreaker: storeBreaker,
	}
}

// TopBalances serves the heap fast path when it holds enough entries within
// the staleness bound, otherwise rebuilds the window from the store. The
// result is always balance descending, account id ascending on ties.
func (s *LeaderboardService) TopBalances(ctx context.Context, limit int) (commons.Response[models.LeaderboardResponse], error) {
	if limit <= 0 {
		limit = 10
	}

	if limit <= s.rank.Len() && s.rank.Age() <= s.maxStale {
		metrics.RecordCacheRequest("leaderboard", "hit")
		return leaderboardResponse(s.rank.Top(limit)), nil
	}

	metrics.RecordCacheRequest("leaderboard", "miss")
	entries, err := s.Rebuild(ctx, limit)
	if err != nil {
		return commons.ErrorResponse[models.LeaderboardResponse]("failed to rank balances", "Unable to rank balances right now"), mapStoreError(err)
	}

	if limit < len(entries) {
		entries = entries[:limit]
	}
	return leaderboardResponse(entries), nil
}

// Rebuild replaces the ranking window with the store's true top balances and
// returns them sorted. The correctness fallback and the cold-start path.
func (s *LeaderboardService) Rebuild(ctx context.Context, limit int) ([]ranker.Entry, error) {
	fetch := limit
	if s.rankSize > fetch {
		fetch = s.rankSize
	}

	var entries []ranker.Entry
	err := s.storeBreaker.Execute(func() error {
		accounts, err := s.accountRepo.TopBalances(ctx, fetch)
		if err != nil {
			return err
		}
		entries = make([]ranker.Entry, 0, len(accounts))
		for _, account := range accounts {
			entries = append(entries, ranker.Entry{AccountID: account.ID, Balance: account.Balance})
		}
		return nil
	})
	if err != nil {
		logger.Error("leaderboard rebuild failed", err, nil)
		return nil, err
	}

	s.rank.Reset(entries)
	return entries, nil
}

func leaderboardResponse(entries []ranker.Entry) commons.Response[models.LeaderboardResponse] {
	out := make([]models.LeaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, models.LeaderboardEntry{
			AccountID: entry.AccountID,
			Balance:   entry.Balance.StringFixed(2),
		})
	}
	return commons.SuccessResponse("Top balances", models.LeaderboardResponse{Entries: out})
}
