package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/wallet-ledger-engine/internal/adapter/http/controller"
	"github.com/api-sage/wallet-ledger-engine/internal/adapter/http/middleware"
	"github.com/api-sage/wallet-ledger-engine/internal/adapter/http/router"
	"github.com/api-sage/wallet-ledger-engine/internal/adapter/repository/postgres"
	"github.com/api-sage/wallet-ledger-engine/internal/cache/lru"
	rediscache "github.com/api-sage/wallet-ledger-engine/internal/cache/redis"
	"github.com/api-sage/wallet-ledger-engine/internal/config"
	"github.com/api-sage/wallet-ledger-engine/internal/domain"
	"github.com/api-sage/wallet-ledger-engine/internal/events"
	kafkaevents "github.com/api-sage/wallet-ledger-engine/internal/events/kafka"
	"github.com/api-sage/wallet-ledger-engine/internal/logger"
	"github.com/api-sage/wallet-ledger-engine/internal/ranker"
	"github.com/api-sage/wallet-ledger-engine/internal/resilience"
	"github.com/api-sage/wallet-ledger-engine/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := postgres.RunMigrations(ctx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		cancel()
		log.Fatalf("run migrations: %v", err)
	}

	db, err := postgres.Open(ctx, cfg.DatabaseDSN)
	cancel()
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	defer db.Close()

	remote, err := rediscache.New(cfg.RedisAddrs, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	defer remote.Close()

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := kafkaevents.NewPublisher(cfg.KafkaBrokers)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	accountRepo := postgres.NewAccountRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)

	storeBreaker := resilience.NewBreaker("store", cfg.BreakerFailureThreshold, cfg.BreakerRecoveryTimeout).
		Ignore(domain.ErrAccountNotFound, domain.ErrInsufficientFunds, domain.ErrSameAccountTransfer)
	cacheBreaker := resilience.NewBreaker("cache", cfg.BreakerFailureThreshold, cfg.BreakerRecoveryTimeout)

	local := lru.New[string, domain.Account](cfg.LocalCacheSize, cfg.CacheTTL)
	tiered := services.NewTieredCache(local, remote, cacheBreaker, cfg.CacheTTL)
	rank := ranker.New(cfg.LeaderboardSize)

	walletService := services.NewWalletService(accountRepo, tiered, rank, storeBreaker, cfg.TransferMaxRetries)
	transferService := services.NewTransferService(accountRepo, ledgerRepo, tiered, rank, storeBreaker, publisher, cfg.TransferMaxRetries)
	leaderboardService := services.NewLeaderboardService(accountRepo, rank, cfg.LeaderboardSize, cfg.LeaderboardMaxStale, storeBreaker)
	pathService := services.NewPaymentPathService(ledgerRepo, cfg.GraphWindow, storeBreaker)

	// Cold-start the ranking window so early leaderboard reads skip the
	// store.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := leaderboardService.Rebuild(warmCtx, cfg.LeaderboardSize); err != nil {
		logger.Warn("leaderboard cold start skipped", logger.Fields{"error": err.Error()})
	}
	warmCancel()

	authMiddleware := middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKeyHash)
	mux := router.New(
		controller.NewWalletController(walletService),
		controller.NewTransferController(transferService),
		controller.NewRankingController(leaderboardService, pathService),
		authMiddleware,
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go warmLoop(rootCtx, walletService, cfg.HotKeyWarmLimit, cfg.HotKeyWarmPeriod)

	go func() {
		logger.Info("http server listening", logger.Fields{"addr": cfg.HTTPAddr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-rootCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", err, nil)
	}
}

// warmLoop periodically promotes the hottest accounts back into both cache
// tiers.
func warmLoop(ctx context.Context, walletService *services.WalletService, limit int, period time.Duration) {
	if limit <= 0 || period <= 0 {
		return
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			warmCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			walletService.WarmHotKeys(warmCtx, limit)
			cancel()
		}
	}
}
