package events

import (
	"context"
	"time"
)

// TransferCompleted is emitted after a transfer commits. Publishing is best
// effort; a delivery failure never affects the committed ledger write.
type TransferCompleted struct {
	ReferenceID   string    `json:"referenceId"`
	FromAccountID string    `json:"fromAccountId"`
	ToAccountID   string    `json:"toAccountId"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	CompletedAt   time.Time `json:"completedAt"`
}

type Publisher interface {
	PublishTransferCompleted(ctx context.Context, event TransferCompleted) error
}

// NoopPublisher drops events; used when no broker is configured and in tests.
type NoopPublisher struct{}

func (NoopPublisher) PublishTransferCompleted(context.Context, TransferCompleted) error {
	return nil
}
