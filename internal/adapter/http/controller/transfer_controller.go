package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/api-sage/wallet-ledger-engine/internal/adapter/http/models"
	"github.com/api-sage/wallet-ledger-engine/internal/commons"
)

type TransferService interface {
	Transfer(ctx context.Context, req models.TransferRequest) (commons.Response[models.TransferResponse], error)
	ListTransactions(ctx context.Context, accountID, kind string, page, limit int) (commons.Response[models.TransactionListResponse], error)
}

type TransferController struct {
	service TransferService
}

func NewTransferController(service TransferService) *TransferController {
	return &TransferController{service: service}
}

func (c *TransferController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("/transfers", wrap(http.HandlerFunc(c.transfer), authMiddleware))
	mux.Handle("/transactions", wrap(http.HandlerFunc(c.listTransactions), authMiddleware))
}

func (c *TransferController) transfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.TransferResponse]("method not allowed"))
		return
	}

	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.TransferResponse]("invalid request body", err.Error()))
		return
	}

	response, err := c.service.Transfer(r.Context(), req)
	if err != nil {
		writeJSON(w, statusForError(err, response.Message), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (c *TransferController) listTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.TransactionListResponse]("method not allowed"))
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	response, err := c.service.ListTransactions(r.Context(), query.Get("accountId"), query.Get("kind"), page, limit)
	if err != nil {
		writeJSON(w, statusForError(err, response.Message), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}
