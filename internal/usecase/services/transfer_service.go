package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/api-sage/wallet-ledger-engine/internal/adapter/http/models"
	"github.com/api-sage/wallet-ledger-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-ledger-engine/internal/commons"
	"github.com/api-sage/wallet-ledger-engine/internal/domain"
	"github.com/api-sage/wallet-ledger-engine/internal/events"
	"github.com/api-sage/wallet-ledger-engine/internal/logger"
	"github.com/api-sage/wallet-ledger-engine/internal/metrics"
	"github.com/api-sage/wallet-ledger-engine/internal/ranker"
	"github.com/api-sage/wallet-ledger-engine/internal/resilience"
)

type TransferService struct {
	accountRepo  repo_interfaces.AccountRepository
	ledgerRepo   repo_interfaces.LedgerRepository
	cache        *TieredCache
	rank         *ranker.TopK
	storeBreaker *resilience.Breaker
	publisher    events.Publisher
	maxRetries   int
}

func NewTransferService(
	accountRepo repo_interfaces.AccountRepository,
	ledgerRepo repo_interfaces.LedgerRepository,
	cache *TieredCache,
	rank *ranker.TopK,
	storeBreaker *resilience.Breaker,
	publisher events.Publisher,
	maxRetries int,
) *TransferService {
	return &TransferService{
		accountRepo:  accountRepo,
		ledgerRepo:   ledgerRepo,
		cache:        cache,
		rank:         rank,
		storeBreaker: storeBreaker,
		publisher:    publisher,
		maxRetries:   maxRetries,
	}
}

// Transfer moves funds between two accounts as one atomic unit, then
// invalidates both accounts' cache tiers and re-evaluates both against the
// leaderboard window before returning. The referenceId correlates the paired
// ledger entries and serves as the caller's idempotency key.
func (s *TransferService) Transfer(ctx context.Context, req models.TransferRequest) (commons.Response[models.TransferResponse], error) {
	logger.Info("transfer service transfer request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.TransferResponse]("validation failed", err.Error()), err
	}

	fromID := strings.TrimSpace(req.FromAccountID)
	toID := strings.TrimSpace(req.ToAccountID)
	if fromID == toID {
		err := domain.ErrSameAccountTransfer
		return commons.ErrorResponse[models.TransferResponse]("validation failed", err.Error()), err
	}

	amount, err := parsePositiveAmount(req.Amount)
	if err != nil {
		return commons.ErrorResponse[models.TransferResponse]("validation failed", err.Error()), err
	}

	referenceID := uuid.NewString()

	var result domain.TransferResult
	err = withRetry(ctx, s.maxRetries, func() error {
		return s.storeBreaker.Execute(func() error {
			var opErr error
			result, opErr = s.accountRepo.Transfer(ctx, fromID, toID, amount, referenceID, req.Description)
			return opErr
		})
	})
	if err != nil {
		metrics.RecordWalletOperation("transfer", "error")
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			return commons.ErrorResponse[models.TransferResponse]("Account not found"), err
		case errors.Is(err, domain.ErrInsufficientFunds):
			return commons.ErrorResponse[models.TransferResponse]("Insufficient funds", err.Error()), err
		default:
			return commons.ErrorResponse[models.TransferResponse]("failed to process transfer", "Unable to process transfer right now"), mapStoreError(err)
		}
	}

	// Commit-then-invalidate, always: both tiers for both accounts, before
	// the result is returned.
	s.cache.invalidate(ctx, fromID)
	s.cache.invalidate(ctx, toID)
	s.rank.Offer(result.FromAccount.ID, result.FromAccount.Balance)
	s.rank.Offer(result.ToAccount.ID, result.ToAccount.Balance)
	metrics.RecordWalletOperation("transfer", "success")

	if err := s.publisher.PublishTransferCompleted(ctx, events.TransferCompleted{
		ReferenceID:   referenceID,
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        amount.StringFixed(2),
		Currency:      result.FromAccount.Currency,
		CompletedAt:   time.Now().UTC(),
	}); err != nil {
		logger.Warn("transfer event publish failed", logger.Fields{
			"referenceId": referenceID,
			"error":       err.Error(),
		})
	}

	logger.Info("transfer service transfer completed", logger.Fields{
		"referenceId":   referenceID,
		"fromAccountId": fromID,
		"toAccountId":   toID,
	})

	return commons.SuccessResponse("Transfer successful", models.TransferResponse{
		ReferenceID: referenceID,
		FromBalance: result.FromAccount.Balance.StringFixed(2),
		ToBalance:   result.ToAccount.Balance.StringFixed(2),
	}), nil
}

func (s *TransferService) ListTransactions(ctx context.Context, accountID string, kind string, page, limit int) (commons.Response[models.TransactionListResponse], error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		err := errors.New("accountId is required")
		return commons.ErrorResponse[models.TransactionListResponse]("validation failed", err.Error()), err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	err := s.storeBreaker.Execute(func() error {
		_, err := s.accountRepo.GetByID(ctx, accountID)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return commons.ErrorResponse[models.TransactionListResponse]("Account not found"), err
		}
		return commons.ErrorResponse[models.TransactionListResponse]("failed to list transactions", "Unable to list transactions right now"), mapStoreError(err)
	}

	filter := repo_interfaces.EntryFilter{AccountID: accountID, Kind: domain.EntryKind(strings.TrimSpace(kind))}

	var (
		entries []domain.LedgerEntry
		total   int
	)
	err = s.storeBreaker.Execute(func() error {
		var opErr error
		entries, total, opErr = s.ledgerRepo.ListEntries(ctx, filter, page, limit)
		return opErr
	})
	if err != nil {
		return commons.ErrorResponse[models.TransactionListResponse]("failed to list transactions", "Unable to list transactions right now"), mapStoreError(err)
	}

	transactions := make([]models.TransactionResponse, 0, len(entries))
	for _, entry := range entries {
		transactions = append(transactions, models.TransactionResponse{
			TxID:          entry.TxID,
			AccountID:     entry.AccountID,
			Counterparty:  entry.CounterpartyID,
			Kind:          string(entry.Kind),
			Amount:        entry.Amount.StringFixed(2),
			BalanceBefore: entry.BalanceBefore.StringFixed(2),
			BalanceAfter:  entry.BalanceAfter.StringFixed(2),
			Status:        string(entry.Status),
			ReferenceID:   entry.ReferenceID,
			Description:   entry.Description,
			CreatedAt:     entry.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}

	return commons.SuccessResponse("Transactions", models.TransactionListResponse{
		Transactions: transactions,
		Pagination: models.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}), nil
}
