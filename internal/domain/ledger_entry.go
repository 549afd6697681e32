package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryKindDeposit     EntryKind = "deposit"
	EntryKindWithdraw    EntryKind = "withdraw"
	EntryKindTransferIn  EntryKind = "transfer_in"
	EntryKindTransferOut EntryKind = "transfer_out"
)

type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "PENDING"
	EntryStatusCompleted EntryStatus = "COMPLETED"
	EntryStatusFailed    EntryStatus = "FAILED"
)

// LedgerEntry records one balance-changing event for one account. A transfer
// produces two entries, a transfer_out on the source and a transfer_in on the
// destination, sharing a single ReferenceID. Entries are immutable once their
// status reaches COMPLETED or FAILED.
type LedgerEntry struct {
	TxID           string
	AccountID      string
	CounterpartyID *string
	Kind           EntryKind
	Amount         decimal.Decimal
	BalanceBefore  decimal.Decimal
	BalanceAfter   decimal.Decimal
	Status         EntryStatus
	ReferenceID    string
	Description    *string
	CreatedAt      time.Time
}

// TransferResult carries the committed outcome of an atomic transfer.
type TransferResult struct {
	ReferenceID string
	FromAccount Account
	ToAccount   Account
	Entries     []LedgerEntry
}
