package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/api-sage/wallet-ledger-engine/internal/adapter/http/models"
	"github.com/api-sage/wallet-ledger-engine/internal/commons"
)

type WalletService interface {
	CreateWallet(ctx context.Context, req models.CreateWalletRequest) (commons.Response[models.WalletResponse], error)
	GetBalance(ctx context.Context, accountID string) (commons.Response[models.BalanceResponse], error)
	Deposit(ctx context.Context, req models.DepositRequest) (commons.Response[models.MutationResponse], error)
	Withdraw(ctx context.Context, req models.WithdrawRequest) (commons.Response[models.MutationResponse], error)
	HotKeys(ctx context.Context, limit int) (commons.Response[models.HotKeysResponse], error)
}

type WalletController struct {
	service WalletService
}

func NewWalletController(service WalletService) *WalletController {
	return &WalletController{service: service}
}

func (c *WalletController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("/wallets", wrap(http.HandlerFunc(c.createWallet), authMiddleware))
	mux.Handle("/wallets/balance", wrap(http.HandlerFunc(c.getBalance), authMiddleware))
	mux.Handle("/wallets/deposit", wrap(http.HandlerFunc(c.deposit), authMiddleware))
	mux.Handle("/wallets/withdraw", wrap(http.HandlerFunc(c.withdraw), authMiddleware))
	mux.Handle("/wallets/hot-keys", wrap(http.HandlerFunc(c.hotKeys), authMiddleware))
}

func (c *WalletController) createWallet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.WalletResponse]("method not allowed"))
		return
	}

	var req models.CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.WalletResponse]("invalid request body", err.Error()))
		return
	}

	response, err := c.service.CreateWallet(r.Context(), req)
	if err != nil {
		writeJSON(w, statusForError(err, response.Message), response)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

func (c *WalletController) getBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.BalanceResponse]("method not allowed"))
		return
	}

	response, err := c.service.GetBalance(r.Context(), r.URL.Query().Get("accountId"))
	if err != nil {
		writeJSON(w, statusForError(err, response.Message), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (c *WalletController) deposit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.MutationResponse]("method not allowed"))
		return
	}

	var req models.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.MutationResponse]("invalid request body", err.Error()))
		return
	}

	response, err := c.service.Deposit(r.Context(), req)
	if err != nil {
		writeJSON(w, statusForError(err, response.Message), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (c *WalletController) withdraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.MutationResponse]("method not allowed"))
		return
	}

	var req models.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.MutationResponse]("invalid request body", err.Error()))
		return
	}

	response, err := c.service.Withdraw(r.Context(), req)
	if err != nil {
		writeJSON(w, statusForError(err, response.Message), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (c *WalletController) hotKeys(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.HotKeysResponse]("method not allowed"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	response, err := c.service.HotKeys(r.Context(), limit)
	if err != nil {
		writeJSON(w, statusForError(err, response.Message), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}
