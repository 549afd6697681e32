package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/api-sage/wallet-ledger-engine/internal/adapter/http/models"
	"github.com/api-sage/wallet-ledger-engine/internal/commons"
	"github.com/api-sage/wallet-ledger-engine/internal/domain"
	"github.com/api-sage/wallet-ledger-engine/internal/resilience"
)

type stubWalletService struct {
	balanceResponse commons.Response[models.BalanceResponse]
	balanceErr      error
	depositResponse commons.Response[models.MutationResponse]
	depositErr      error
}

func (s *stubWalletService) CreateWallet(context.Context, models.CreateWalletRequest) (commons.Response[models.WalletResponse], error) {
	return commons.SuccessResponse("Wallet created", models.WalletResponse{AccountID: "acct-1"}), nil
}

func (s *stubWalletService) GetBalance(context.Context, string) (commons.Response[models.BalanceResponse], error) {
	return s.balanceResponse, s.balanceErr
}

func (s *stubWalletService) Deposit(context.Context, models.DepositRequest) (commons.Response[models.MutationResponse], error) {
	return s.depositResponse, s.depositErr
}

func (s *stubWalletService) Withdraw(context.Context, models.WithdrawRequest) (commons.Response[models.MutationResponse], error) {
	return s.depositResponse, s.depositErr
}

func (s *stubWalletService) HotKeys(context.Context, int) (commons.Response[models.HotKeysResponse], error) {
	return commons.SuccessResponse("Hot keys", models.HotKeysResponse{Keys: []string{}}), nil
}

func newWalletMux(service WalletService) *http.ServeMux {
	mux := http.NewServeMux()
	NewWalletController(service).RegisterRoutes(mux, nil)
	return mux
}

func TestCreateWalletReturnsCreated(t *testing.T) {
	mux := newWalletMux(&stubWalletService{})

	body := strings.NewReader(`{"owner":"alice","currency":"USD"}`)
	req := httptest.NewRequest(http.MethodPost, "/wallets", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var response commons.Response[models.WalletResponse]
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !response.Success || response.Data == nil || response.Data.AccountID != "acct-1" {
		t.Fatalf("unexpected response: %+v", response)
	}
}

func TestCreateWalletRejectsMalformedBody(t *testing.T) {
	mux := newWalletMux(&stubWalletService{})

	req := httptest.NewRequest(http.MethodPost, "/wallets", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetBalanceMapsNotFound(t *testing.T) {
	mux := newWalletMux(&stubWalletService{
		balanceResponse: commons.ErrorResponse[models.BalanceResponse]("Account not found"),
		balanceErr:      domain.ErrAccountNotFound,
	})

	req := httptest.NewRequest(http.MethodGet, "/wallets/balance?accountId=missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDepositMapsInsufficientFunds(t *testing.T) {
	mux := newWalletMux(&stubWalletService{
		depositResponse: commons.ErrorResponse[models.MutationResponse]("Insufficient funds"),
		depositErr:      domain.ErrInsufficientFunds,
	})

	body := strings.NewReader(`{"accountId":"acct-1","amount":"10"}`)
	req := httptest.NewRequest(http.MethodPost, "/wallets/withdraw", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMutationRequiresPost(t *testing.T) {
	mux := newWalletMux(&stubWalletService{})

	req := httptest.NewRequest(http.MethodGet, "/wallets/deposit", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestStatusForErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		message string
		want    int
	}{
		{"not found", domain.ErrAccountNotFound, "", http.StatusNotFound},
		{"insufficient funds", domain.ErrInsufficientFunds, "", http.StatusBadRequest},
		{"invalid amount", domain.ErrInvalidAmount, "", http.StatusBadRequest},
		{"same account", domain.ErrSameAccountTransfer, "", http.StatusBadRequest},
		{"store unavailable", domain.ErrStoreUnavailable, "", http.StatusServiceUnavailable},
		{"breaker open", resilience.ErrOpen, "", http.StatusServiceUnavailable},
		{"validation", context.DeadlineExceeded, "validation failed", http.StatusBadRequest},
		{"unknown", context.DeadlineExceeded, "other", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusForError(tc.err, tc.message); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
