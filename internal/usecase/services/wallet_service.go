package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/api-sage/wallet-ledger-engine/internal/adapter/http/models"
	"github.com/api-sage/wallet-ledger-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-ledger-engine/internal/commons"
	"github.com/api-sage/wallet-ledger-engine/internal/domain"
	"github.com/api-sage/wallet-ledger-engine/internal/logger"
	"github.com/api-sage/wallet-ledger-engine/internal/metrics"
	"github.com/api-sage/wallet-ledger-engine/internal/ranker"
	"github.com/api-sage/wallet-ledger-engine/internal/resilience"
)

type WalletService struct {
	accountRepo  repo_interfaces.AccountRepository
	cache        *TieredCache
	rank         *ranker.TopK
	storeBreaker *resilience.Breaker
	maxRetries   int
	flight       singleflight.Group
}

func NewWalletService(
	accountRepo repo_interfaces.AccountRepository,
	cache *TieredCache,
	rank *ranker.TopK,
	storeBreaker *resilience.Breaker,
	maxRetries int,
) *WalletService {
	return &WalletService{
		accountRepo:  accountRepo,
		cache:        cache,
		rank:         rank,
		storeBreaker: storeBreaker,
		maxRetries:   maxRetries,
	}
}

func (s *WalletService) CreateWallet(ctx context.Context, req models.CreateWalletRequest) (commons.Response[models.WalletResponse], error) {
	logger.Info("wallet service create wallet", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.WalletResponse]("validation failed", err.Error()), err
	}

	balance := decimal.Zero
	if strings.TrimSpace(req.InitialBalance) != "" {
		balance, _ = decimal.NewFromString(strings.TrimSpace(req.InitialBalance))
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	account := domain.Account{
		ID:       uuid.NewString(),
		Owner:    strings.TrimSpace(req.Owner),
		Currency: currency,
		Balance:  balance,
	}

	var created domain.Account
	err := s.storeBreaker.Execute(func() error {
		var err error
		created, err = s.accountRepo.Create(ctx, account)
		return err
	})
	if err != nil {
		metrics.RecordWalletOperation("create", "error")
		return commons.ErrorResponse[models.WalletResponse]("failed to create wallet", "Unable to create wallet right now"), mapStoreError(err)
	}

	s.cache.prime(ctx, created)
	s.rank.Offer(created.ID, created.Balance)
	metrics.RecordWalletOperation("create", "success")

	return commons.SuccessResponse("Wallet created", models.WalletResponse{
		AccountID: created.ID,
		Owner:     created.Owner,
		Currency:  created.Currency,
		Balance:   created.Balance.StringFixed(2),
	}), nil
}

// GetBalance resolves local cache, then remote cache, then the store,
// populating caches on the way back. Concurrent misses for one account
// collapse into a single store read.
func (s *WalletService) GetBalance(ctx context.Context, accountID string) (commons.Response[models.BalanceResponse], error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		err := errors.New("accountId is required")
		return commons.ErrorResponse[models.BalanceResponse]("validation failed", err.Error()), err
	}

	if account, ok := s.cache.getLocal(accountID); ok {
		s.cache.recordAccess(ctx, accountID)
		return balanceResponse(account), nil
	}

	value, err, _ := s.flight.Do(accountKey(accountID), func() (any, error) {
		if account, ok := s.cache.getRemote(ctx, accountID); ok {
			return account, nil
		}

		var account domain.Account
		storeErr := s.storeBreaker.Execute(func() error {
			var err error
			account, err = s.accountRepo.GetByID(ctx, accountID)
			return err
		})
		if storeErr != nil {
			return domain.Account{}, storeErr
		}

		metrics.RecordCacheRequest("store", "hit")
		s.cache.prime(ctx, account)
		return account, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return commons.ErrorResponse[models.BalanceResponse]("Account not found"), err
		}
		metrics.RecordWalletOperation("get_balance", "error")
		return commons.ErrorResponse[models.BalanceResponse]("failed to read balance", "Unable to read balance right now"), mapStoreError(err)
	}

	account := value.(domain.Account)
	s.cache.recordAccess(ctx, accountID)
	return balanceResponse(account), nil
}

func (s *WalletService) Deposit(ctx context.Context, req models.DepositRequest) (commons.Response[models.MutationResponse], error) {
	logger.Info("wallet service deposit", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.MutationResponse]("validation failed", err.Error()), err
	}

	amount, err := parsePositiveAmount(req.Amount)
	if err != nil {
		return commons.ErrorResponse[models.MutationResponse]("validation failed", err.Error()), err
	}

	accountID := strings.TrimSpace(req.AccountID)
	referenceID := uuid.NewString()

	var (
		account domain.Account
		entry   domain.LedgerEntry
	)
	err = withRetry(ctx, s.maxRetries, func() error {
		return s.storeBreaker.Execute(func() error {
			var opErr error
			account, entry, opErr = s.accountRepo.Deposit(ctx, accountID, amount, referenceID, req.Description)
			return opErr
		})
	})
	if err != nil {
		metrics.RecordWalletOperation("deposit", "error")
		return mutationErrorResponse(err, "deposit")
	}

	s.cache.invalidate(ctx, accountID)
	s.rank.Offer(account.ID, account.Balance)
	metrics.RecordWalletOperation("deposit", "success")

	return commons.SuccessResponse("Deposit successful", models.MutationResponse{
		AccountID:   account.ID,
		Balance:     account.Balance.StringFixed(2),
		ReferenceID: referenceID,
		TxID:        entry.TxID,
	}), nil
}

func (s *WalletService) Withdraw(ctx context.Context, req models.WithdrawRequest) (commons.Response[models.MutationResponse], error) {
	logger.Info("wallet service withdraw", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.MutationResponse]("validation failed", err.Error()), err
	}

	amount, err := parsePositiveAmount(req.Amount)
	if err != nil {
		return commons.ErrorResponse[models.MutationResponse]("validation failed", err.Error()), err
	}

	accountID := strings.TrimSpace(req.AccountID)
	referenceID := uuid.NewString()

	var (
		account domain.Account
		entry   domain.LedgerEntry
	)
	err = withRetry(ctx, s.maxRetries, func() error {
		return s.storeBreaker.Execute(func() error {
			var opErr error
			account, entry, opErr = s.accountRepo.Withdraw(ctx, accountID, amount, referenceID, req.Description)
			return opErr
		})
	})
	if err != nil {
		metrics.RecordWalletOperation("withdraw", "error")
		return mutationErrorResponse(err, "withdraw")
	}

	s.cache.invalidate(ctx, accountID)
	s.rank.Offer(account.ID, account.Balance)
	metrics.RecordWalletOperation("withdraw", "success")

	return commons.SuccessResponse("Withdrawal successful", models.MutationResponse{
		AccountID:   account.ID,
		Balance:     account.Balance.StringFixed(2),
		ReferenceID: referenceID,
		TxID:        entry.TxID,
	}), nil
}

func (s *WalletService) HotKeys(ctx context.Context, limit int) (commons.Response[models.HotKeysResponse], error) {
	if limit <= 0 {
		limit = 100
	}

	keys, err := s.cache.topHotKeys(ctx, limit)
	if err != nil {
		logger.Warn("wallet service hot keys degraded", logger.Fields{"error": err.Error()})
		return commons.SuccessResponse("Hot keys unavailable", models.HotKeysResponse{Keys: []string{}}), nil
	}

	return commons.SuccessResponse("Hot keys", models.HotKeysResponse{Keys: keys}), nil
}

// WarmHotKeys reloads the most frequently read accounts into both cache
// tiers. Invoked periodically; every failure is non-fatal.
func (s *WalletService) WarmHotKeys(ctx context.Context, limit int) {
	keys, err := s.cache.topHotKeys(ctx, limit)
	if err != nil {
		logger.Warn("hot key warm skipped", logger.Fields{"error": err.Error()})
		return
	}

	warmed := 0
	for _, key := range keys {
		accountID := strings.TrimPrefix(key, accountKeyPrefix)
		if accountID == key || accountID == "" {
			continue
		}
		if _, ok := s.cache.getLocal(accountID); ok {
			continue
		}

		var account domain.Account
		err := s.storeBreaker.Execute(func() error {
			var err error
			account, err = s.accountRepo.GetByID(ctx, accountID)
			return err
		})
		if err != nil {
			continue
		}
		s.cache.prime(ctx, account)
		warmed++
	}

	if warmed > 0 {
		logger.Info("hot key warm completed", logger.Fields{"warmed": warmed})
	}
}

func balanceResponse(account domain.Account) commons.Response[models.BalanceResponse] {
	return commons.SuccessResponse("Balance", models.BalanceResponse{
		AccountID: account.ID,
		Owner:     account.Owner,
		Currency:  account.Currency,
		Balance:   account.Balance.StringFixed(2),
	})
}

func mutationErrorResponse(err error, operation string) (commons.Response[models.MutationResponse], error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return commons.ErrorResponse[models.MutationResponse]("Account not found"), err
	case errors.Is(err, domain.ErrInsufficientFunds):
		return commons.ErrorResponse[models.MutationResponse]("Insufficient funds", err.Error()), err
	default:
		return commons.ErrorResponse[models.MutationResponse]("failed to process "+operation, "Unable to process "+operation+" right now"), mapStoreError(err)
	}
}

func parsePositiveAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}
	return amount, nil
}

// mapStoreError folds breaker short-circuits into the store-unavailable
// class callers are told about.
func mapStoreError(err error) error {
	if errors.Is(err, resilience.ErrOpen) {
		return domain.ErrStoreUnavailable
	}
	return err
}
