package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/api-sage/wallet-ledger-engine/internal/adapter/http/models"
	"github.com/api-sage/wallet-ledger-engine/internal/commons"
)

type LeaderboardService interface {
	TopBalances(ctx context.Context, limit int) (commons.Response[models.LeaderboardResponse], error)
}

type PaymentPathService interface {
	ShortestPaymentPath(ctx context.Context, start, dest string) (commons.Response[models.PaymentPathResponse], error)
}

type RankingController struct {
	leaderboard LeaderboardService
	paths       PaymentPathService
}

func NewRankingController(leaderboard LeaderboardService, paths PaymentPathService) *RankingController {
	return &RankingController{leaderboard: leaderboard, paths: paths}
}

func (c *RankingController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("/leaderboard", wrap(http.HandlerFunc(c.topBalances), authMiddleware))
	mux.Handle("/payment-path", wrap(http.HandlerFunc(c.shortestPath), authMiddleware))
}

func (c *RankingController) topBalances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.LeaderboardResponse]("method not allowed"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	response, err := c.leaderboard.TopBalances(r.Context(), limit)
	if err != nil {
		writeJSON(w, statusForError(err, response.Message), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (c *RankingController) shortestPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, commons.ErrorResponse[models.PaymentPathResponse]("method not allowed"))
		return
	}

	query := r.URL.Query()
	response, err := c.paths.ShortestPaymentPath(r.Context(), query.Get("start"), query.Get("dest"))
	if err != nil {
		writeJSON(w, statusForError(err, response.Message), response)
		return
	}

	if response.Data == nil {
		writeJSON(w, http.StatusNotFound, response)
		return
	}
	writeJSON(w, http.StatusOK, response)
}
