package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type CreateWalletRequest struct {
	Owner          string `json:"owner"`
	Currency       string `json:"currency"`
	InitialBalance string `json:"initialBalance"`
}

func (r CreateWalletRequest) Validate() error {
	if strings.TrimSpace(r.Owner) == "" {
		return fmt.Errorf("owner is required")
	}
	if strings.TrimSpace(r.InitialBalance) != "" {
		balance, err := decimal.NewFromString(strings.TrimSpace(r.InitialBalance))
		if err != nil {
			return fmt.Errorf("initialBalance must be numeric")
		}
		if balance.IsNegative() {
			return fmt.Errorf("initialBalance cannot be negative")
		}
	}
	return nil
}

type WalletResponse struct {
	AccountID string `json:"accountId"`
	Owner     string `json:"owner"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
}

type DepositRequest struct {
	AccountID   string  `json:"accountId"`
	Amount      string  `json:"amount"`
	Description *string `json:"description,omitempty"`
}

func (r DepositRequest) Validate() error {
	return validateMutation(r.AccountID, r.Amount)
}

type WithdrawRequest struct {
	AccountID   string  `json:"accountId"`
	Amount      string  `json:"amount"`
	Description *string `json:"description,omitempty"`
}

func (r WithdrawRequest) Validate() error {
	return validateMutation(r.AccountID, r.Amount)
}

type MutationResponse struct {
	AccountID   string `json:"accountId"`
	Balance     string `json:"balance"`
	ReferenceID string `json:"referenceId"`
	TxID        string `json:"txId"`
}

type BalanceResponse struct {
	AccountID string `json:"accountId"`
	Owner     string `json:"owner"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
}

type HotKeysResponse struct {
	Keys []string `json:"keys"`
}

func validateMutation(accountID, amount string) error {
	if strings.TrimSpace(accountID) == "" {
		return fmt.Errorf("accountId is required")
	}
	if strings.TrimSpace(amount) == "" {
		return fmt.Errorf("amount is required")
	}
	if _, err := decimal.NewFromString(strings.TrimSpace(amount)); err != nil {
		return fmt.Errorf("amount must be numeric")
	}
	return nil
}
