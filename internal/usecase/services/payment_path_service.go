package services

import (
	"context"
	"errors"
	"strings"

	"github.com/api-sage/wallet-ledger-engine/internal/adapter/http/models"
	"github.com/api-sage/wallet-ledger-engine/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/wallet-ledger-engine/internal/commons"
	"github.com/api-sage/wallet-ledger-engine/internal/domain"
	"github.com/api-sage/wallet-ledger-engine/internal/graph"
	"github.com/api-sage/wallet-ledger-engine/internal/resilience"
)

type PaymentPathService struct {
	ledgerRepo   repo_interfaces.LedgerRepository
	window       int
	storeBreaker *resilience.Breaker
}

func NewPaymentPathService(ledgerRepo repo_interfaces.LedgerRepository, window int, storeBreaker *resilience.Breaker) *PaymentPathService {
	return &PaymentPathService{
		ledgerRepo:   ledgerRepo,
		window:       window,
		storeBreaker: storeBreaker,
	}
}

// ShortestPaymentPath builds the relationship graph from the most recent
// transfer window and runs Dijkstra over it. The graph is transient, rebuilt
// per query; it never participates in the write path.
func (s *PaymentPathService) ShortestPaymentPath(ctx context.Context, start, dest string) (commons.Response[models.PaymentPathResponse], error) {
	start = strings.TrimSpace(start)
	dest = strings.TrimSpace(dest)
	if start == "" || dest == "" {
		err := errors.New("start and dest are required")
		return commons.ErrorResponse[models.PaymentPathResponse]("validation failed", err.Error()), err
	}

	var entries []domain.LedgerEntry
	err := s.storeBreaker.Execute(func() error {
		var opErr error
		entries, opErr = s.ledgerRepo.Recent(ctx, s.window)
		return opErr
	})
	if err != nil {
		return commons.ErrorResponse[models.PaymentPathResponse]("failed to build payment graph", "Unable to query payment graph right now"), mapStoreError(err)
	}

	// Recent returns newest first; reverse so later transfers between the
	// same pair overwrite the edge weight.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	path, ok := graph.Build(entries).ShortestPath(start, dest)
	if !ok {
		return commons.Response[models.PaymentPathResponse]{
			Success: true,
			Message: "No payment path found",
		}, nil
	}

	return commons.SuccessResponse("Payment path", models.PaymentPathResponse{
		Distance: path.Distance.StringFixed(2),
		Path:     path.Nodes,
	}), nil
}
