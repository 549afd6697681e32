package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/api-sage/wallet-ledger-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-ledger-engine/internal/domain"
	"github.com/api-sage/wallet-ledger-engine/internal/logger"
	"github.com/api-sage/wallet-ledger-engine/internal/metrics"
)

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) ListEntries(ctx context.Context, filter repo_interfaces.EntryFilter, page, limit int) ([]domain.LedgerEntry, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	where := "WHERE account_id = $1"
	args := []any{filter.AccountID}
	if filter.Kind != "" {
		where += " AND kind = $2"
		args = append(args, filter.Kind)
	}

	var total int
	countQuery := "SELECT COUNT(1) FROM ledger_entries " + where
	err := metrics.ObserveDBQuery("ledger_count", func() error {
		return r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	})
	if err != nil {
		logger.Error("ledger repository count failed", err, logger.Fields{"accountId": filter.AccountID})
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	listQuery := `
SELECT tx_id, account_id, counterparty_id, kind, amount, balance_before, balance_after, status, reference_id, description, created_at
FROM ledger_entries ` + where + fmt.Sprintf(`
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	entries, err := r.queryEntries(ctx, "ledger_list", listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *LedgerRepository) Recent(ctx context.Context, window int) ([]domain.LedgerEntry, error) {
	if window < 1 {
		window = 100
	}

	const query = `
SELECT tx_id, account_id, counterparty_id, kind, amount, balance_before, balance_after, status, reference_id, description, created_at
FROM ledger_entries
WHERE status = 'COMPLETED'
ORDER BY created_at DESC
LIMIT $1`

	return r.queryEntries(ctx, "ledger_recent", query, window)
}

func (r *LedgerRepository) queryEntries(ctx context.Context, operation, query string, args ...any) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := metrics.ObserveDBQuery(operation, func() error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var entry domain.LedgerEntry
			if err := rows.Scan(
				&entry.TxID,
				&entry.AccountID,
				&entry.CounterpartyID,
				&entry.Kind,
				&entry.Amount,
				&entry.BalanceBefore,
				&entry.BalanceAfter,
				&entry.Status,
				&entry.ReferenceID,
				&entry.Description,
				&entry.CreatedAt,
			); err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return rows.Err()
	})
	if err != nil {
		logger.Error("ledger repository query failed", err, logger.Fields{"operation": operation})
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	return entries, nil
}
