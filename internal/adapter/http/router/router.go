package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WalletRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

type TransferRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

type RankingRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

func New(
	walletController WalletRouteRegistrar,
	transferController TransferRouteRegistrar,
	rankingController RankingRouteRegistrar,
	authMiddleware func(http.Handler) http.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if walletController != nil {
		walletController.RegisterRoutes(mux, authMiddleware)
	}
	if transferController != nil {
		transferController.RegisterRoutes(mux, authMiddleware)
	}
	if rankingController != nil {
		rankingController.RegisterRoutes(mux, authMiddleware)
	}

	return mux
}
