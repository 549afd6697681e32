package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type TransferRequest struct {
	FromAccountID string  `json:"fromAccountId"`
	ToAccountID   string  `json:"toAccountId"`
	Amount        string  `json:"amount"`
	Description   *string `json:"description,omitempty"`
}

func (r TransferRequest) Validate() error {
	if strings.TrimSpace(r.FromAccountID) == "" {
		return fmt.Errorf("fromAccountId is required")
	}
	if strings.TrimSpace(r.ToAccountID) == "" {
		return fmt.Errorf("toAccountId is required")
	}
	if strings.TrimSpace(r.Amount) == "" {
		return fmt.Errorf("amount is required")
	}
	if _, err := decimal.NewFromString(strings.TrimSpace(r.Amount)); err != nil {
		return fmt.Errorf("amount must be numeric")
	}
	return nil
}

type TransferResponse struct {
	ReferenceID string `json:"referenceId"`
	FromBalance string `json:"fromBalance"`
	ToBalance   string `json:"toBalance"`
}

type TransactionResponse struct {
	TxID          string  `json:"txId"`
	AccountID     string  `json:"accountId"`
	Counterparty  *string `json:"counterparty,omitempty"`
	Kind          string  `json:"kind"`
	Amount        string  `json:"amount"`
	BalanceBefore string  `json:"balanceBefore"`
	BalanceAfter  string  `json:"balanceAfter"`
	Status        string  `json:"status"`
	ReferenceID   string  `json:"referenceId"`
	Description   *string `json:"description,omitempty"`
	CreatedAt     string  `json:"createdAt"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   Pagination            `json:"pagination"`
}
