package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/api-sage/wallet-ledger-engine/internal/domain"
	"github.com/api-sage/wallet-ledger-engine/internal/logger"
	"github.com/api-sage/wallet-ledger-engine/internal/metrics"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account repository create", logger.Fields{
		"accountId": account.ID,
		"owner":     account.Owner,
		"currency":  account.Currency,
	})

	const query = `
INSERT INTO accounts (id, owner, currency, balance)
VALUES ($1, $2, $3, $4)
RETURNING version, created_at, updated_at`

	err := metrics.ObserveDBQuery("account_create", func() error {
		return r.db.QueryRowContext(ctx, query, account.ID, account.Owner, account.Currency, account.Balance).
			Scan(&account.Version, &account.CreatedAt, &account.UpdatedAt)
	})
	if err != nil {
		logger.Error("account repository create failed", err, logger.Fields{"accountId": account.ID})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	const query = `
SELECT id, owner, currency, balance, version, created_at, updated_at
FROM accounts
WHERE id = $1`

	var account domain.Account
	err := metrics.ObserveDBQuery("account_get", func() error {
		return r.db.QueryRowContext(ctx, query, id).Scan(
			&account.ID,
			&account.Owner,
			&account.Currency,
			&account.Balance,
			&account.Version,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if err != nil {
		logger.Error("account repository get failed", err, logger.Fields{"accountId": id})
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) TopBalances(ctx context.Context, limit int) ([]domain.Account, error) {
	const query = `
SELECT id, owner, currency, balance, version, created_at, updated_at
FROM accounts
ORDER BY balance DESC, id ASC
LIMIT $1`

	var accounts []domain.Account
	err := metrics.ObserveDBQuery("account_top_balances", func() error {
		rows, err := r.db.QueryContext(ctx, query, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var account domain.Account
			if err := rows.Scan(
				&account.ID,
				&account.Owner,
				&account.Currency,
				&account.Balance,
				&account.Version,
				&account.CreatedAt,
				&account.UpdatedAt,
			); err != nil {
				return err
			}
			accounts = append(accounts, account)
		}
		return rows.Err()
	})
	if err != nil {
		logger.Error("account repository top balances failed", err, nil)
		return nil, fmt.Errorf("query top balances: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, referenceID string, description *string) (domain.Account, domain.LedgerEntry, error) {
	var (
		account domain.Account
		entry   domain.LedgerEntry
	)

	err := metrics.ObserveDBQuery("deposit", func() error {
		return r.withTx(ctx, func(tx *sql.Tx) error {
			var err error
			account, err = lockAccount(ctx, tx, accountID)
			if err != nil {
				return err
			}

			before := account.Balance
			account.Balance = before.Add(amount)
			if err := updateBalance(ctx, tx, &account); err != nil {
				return err
			}

			entry = domain.LedgerEntry{
				TxID:          uuid.NewString(),
				AccountID:     accountID,
				Kind:          domain.EntryKindDeposit,
				Amount:        amount,
				BalanceBefore: before,
				BalanceAfter:  account.Balance,
				Status:        domain.EntryStatusCompleted,
				ReferenceID:   referenceID,
				Description:   description,
			}
			return insertEntry(ctx, tx, &entry)
		})
	})
	if err != nil {
		return domain.Account{}, domain.LedgerEntry{}, err
	}

	return account, entry, nil
}

func (r *AccountRepository) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, referenceID string, description *string) (domain.Account, domain.LedgerEntry, error) {
	var (
		account domain.Account
		entry   domain.LedgerEntry
	)

	err := metrics.ObserveDBQuery("withdraw", func() error {
		return r.withTx(ctx, func(tx *sql.Tx) error {
			var err error
			account, err = lockAccount(ctx, tx, accountID)
			if err != nil {
				return err
			}

			if account.Balance.LessThan(amount) {
				return domain.ErrInsufficientFunds
			}

			before := account.Balance
			account.Balance = before.Sub(amount)
			if err := updateBalance(ctx, tx, &account); err != nil {
				return err
			}

			entry = domain.LedgerEntry{
				TxID:          uuid.NewString(),
				AccountID:     accountID,
				Kind:          domain.EntryKindWithdraw,
				Amount:        amount,
				BalanceBefore: before,
				BalanceAfter:  account.Balance,
				Status:        domain.EntryStatusCompleted,
				ReferenceID:   referenceID,
				Description:   description,
			}
			return insertEntry(ctx, tx, &entry)
		})
	})
	if err != nil {
		return domain.Account{}, domain.LedgerEntry{}, err
	}

	return account, entry, nil
}

func (r *AccountRepository) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal, referenceID string, description *string) (domain.TransferResult, error) {
	logger.Info("account repository transfer", logger.Fields{
		"fromAccountId": fromID,
		"toAccountId":   toID,
		"referenceId":   referenceID,
	})

	var result domain.TransferResult

	err := metrics.ObserveDBQuery("transfer", func() error {
		return r.withTx(ctx, func(tx *sql.Tx) error {
			// Lock rows in ascending id order so crossing transfers cannot
			// deadlock.
			lockOrder := []string{fromID, toID}
			sort.Strings(lockOrder)

			locked := make(map[string]domain.Account, 2)
			for _, id := range lockOrder {
				account, err := lockAccount(ctx, tx, id)
				if err != nil {
					return err
				}
				locked[id] = account
			}

			from := locked[fromID]
			to := locked[toID]

			if from.Balance.LessThan(amount) {
				return domain.ErrInsufficientFunds
			}

			fromBefore := from.Balance
			toBefore := to.Balance
			from.Balance = fromBefore.Sub(amount)
			to.Balance = toBefore.Add(amount)

			if err := updateBalance(ctx, tx, &from); err != nil {
				return err
			}
			if err := updateBalance(ctx, tx, &to); err != nil {
				return err
			}

			outEntry := domain.LedgerEntry{
				TxID:           uuid.NewString(),
				AccountID:      fromID,
				CounterpartyID: &toID,
				Kind:           domain.EntryKindTransferOut,
				Amount:         amount,
				BalanceBefore:  fromBefore,
				BalanceAfter:   from.Balance,
				Status:         domain.EntryStatusCompleted,
				ReferenceID:    referenceID,
				Description:    description,
			}
			inEntry := domain.LedgerEntry{
				TxID:           uuid.NewString(),
				AccountID:      toID,
				CounterpartyID: &fromID,
				Kind:           domain.EntryKindTransferIn,
				Amount:         amount,
				BalanceBefore:  toBefore,
				BalanceAfter:   to.Balance,
				Status:         domain.EntryStatusCompleted,
				ReferenceID:    referenceID,
				Description:    description,
			}

			if err := insertEntry(ctx, tx, &outEntry); err != nil {
				return err
			}
			if err := insertEntry(ctx, tx, &inEntry); err != nil {
				return err
			}

			result = domain.TransferResult{
				ReferenceID: referenceID,
				FromAccount: from,
				ToAccount:   to,
				Entries:     []domain.LedgerEntry{outEntry, inEntry},
			}
			return nil
		})
	})
	if err != nil {
		return domain.TransferResult{}, err
	}

	return result, nil
}

func (r *AccountRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return translateError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func lockAccount(ctx context.Context, tx *sql.Tx, id string) (domain.Account, error) {
	const query = `
SELECT id, owner, currency, balance, version, created_at, updated_at
FROM accounts
WHERE id = $1
FOR UPDATE`

	var account domain.Account
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Owner,
		&account.Currency,
		&account.Balance,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("lock account %q: %w", id, err)
	}
	return account, nil
}

func updateBalance(ctx context.Context, tx *sql.Tx, account *domain.Account) error {
	const query = `
UPDATE accounts
SET balance = $2,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1
RETURNING version, updated_at`

	if err := tx.QueryRowContext(ctx, query, account.ID, account.Balance).
		Scan(&account.Version, &account.UpdatedAt); err != nil {
		return fmt.Errorf("update balance %q: %w", account.ID, err)
	}
	return nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) error {
	const query = `
INSERT INTO ledger_entries (
	tx_id,
	account_id,
	counterparty_id,
	kind,
	amount,
	balance_before,
	balance_after,
	status,
	reference_id,
	description
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at`

	var createdAt time.Time
	if err := tx.QueryRowContext(
		ctx,
		query,
		entry.TxID,
		entry.AccountID,
		entry.CounterpartyID,
		entry.Kind,
		entry.Amount,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.Status,
		entry.ReferenceID,
		entry.Description,
	).Scan(&createdAt); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}

	entry.CreatedAt = createdAt
	return nil
}

// translateError maps store-level conflicts onto the retryable sentinel while
// leaving precondition failures untouched.
func translateError(err error) error {
	if errors.Is(err, domain.ErrAccountNotFound) || errors.Is(err, domain.ErrInsufficientFunds) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %v", domain.ErrConcurrentModification, err)
		}
	}
	return err
}
