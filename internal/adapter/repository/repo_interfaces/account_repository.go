package repo_interfaces

import (
	"context"

	"github.com/api-sage/wallet-ledger-engine/internal/domain"
	"github.com/shopspring/decimal"
)

type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)
	TopBalances(ctx context.Context, limit int) ([]domain.Account, error)

	// Deposit, Withdraw and Transfer each run as a single atomic unit spanning
	// the balance read, the mutation and the ledger entry insert. On any
	// precondition failure nothing is written.
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal, referenceID string, description *string) (domain.Account, domain.LedgerEntry, error)
	Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, referenceID string, description *string) (domain.Account, domain.LedgerEntry, error)
	Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal, referenceID string, description *string) (domain.TransferResult, error)
}
