package repo_interfaces

import (
	"context"

	"github.com/api-sage/wallet-ledger-engine/internal/domain"
)

type EntryFilter struct {
	AccountID string
	Kind      domain.EntryKind
}

type LedgerRepository interface {
	ListEntries(ctx context.Context, filter EntryFilter, page, limit int) ([]domain.LedgerEntry, int, error)

	// Recent returns up to window completed entries, newest first. Used to
	// build the payment relationship graph.
	Recent(ctx context.Context, window int) ([]domain.LedgerEntry, error)
}
