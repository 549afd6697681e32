package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID        string
	Owner     string
	Currency  string
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
