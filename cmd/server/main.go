// Package main runs the SolaPay API server: balance reads against a
// Solana RPC node, transaction recording in PostgreSQL, and the
// supporting profile/KYC endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"solapay/internal/config"
	"solapay/internal/payments"
	"solapay/internal/server"
	"solapay/internal/solana"
	"solapay/internal/storage"
	"solapay/internal/storage/memory"
	"solapay/internal/storage/migrations"
	"solapay/internal/storage/noop"
	pgstore "solapay/internal/storage/postgres"
	"solapay/internal/wallet"
)

// stores holds the three storage implementations behind one switch.
type stores struct {
	transactions storage.TransactionStore
	users        storage.UserStore
	kyc          storage.KYCStore
}

func main() {
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	runMigrations := flag.Bool("migrate", false, "Apply schema migrations before serving")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if *useMemory {
		// Memory storage needs no database URL.
		if cfg.SolanaRPCURL == "" {
			logger.Fatal("SOLANA_RPC_URL is required")
		}
	} else if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, cleanup, err := createStores(ctx, cfg, *useMemory, *runMigrations, logger)
	if err != nil {
		logger.Fatal("create stores", zap.Error(err))
	}
	defer cleanup()

	rpc := solana.NewHTTPClient(cfg.SolanaRPCURL, solana.WithTimeout(cfg.RPCTimeout))

	walletSvc := wallet.NewService(rpc, cfg.DefaultFiat, wallet.Rates{
		SOLToGBP: cfg.MockSOLGBPRate,
		SOLToUSD: cfg.MockSOLUSDRate,
		GBPToPKR: cfg.MockRateGBPToPKR,
	}, cfg.StrictAddressCheck, logger.Named("wallet"))

	paymentsSvc := payments.NewService(payments.Options{
		Transactions:        st.transactions,
		KYC:                 st.kyc,
		RPC:                 rpc,
		Logger:              logger.Named("payments"),
		DefaultNetwork:      cfg.Network,
		DefaultFiat:         cfg.DefaultFiat,
		ConfirmProbeTimeout: cfg.ConfirmProbeTimeout,
		AllowUnfilteredList: cfg.AllowUnfilteredList,
		StrictAddressCheck:  cfg.StrictAddressCheck,
		ListLimit:           cfg.ListLimit,
	})

	srv := server.New(server.Options{
		Wallet:      walletSvc,
		Payments:    paymentsSvc,
		Users:       st.users,
		Logger:      logger.Named("http"),
		CORSOrigins: cfg.CORSOrigins,
		DemoMode:    cfg.DatabaseURL == "" && cfg.DemoMode,
		Network:     cfg.Network,
	})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
		cancel()

		// Second signal forces immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Warn("received second signal, forcing exit", zap.String("signal", sig.String()))
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn("graceful shutdown timed out, forcing exit")
			os.Exit(1)
		}
	}()

	if err := srv.Run(ctx, cfg.ListenAddr); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

// createStores picks the storage backend: PostgreSQL when DATABASE_URL
// is set, in-memory with -use-memory, discard stores in demo mode.
func createStores(ctx context.Context, cfg *config.Config, useMemory, migrate bool, logger *zap.Logger) (*stores, func(), error) {
	if useMemory {
		logger.Info("using in-memory storage")
		return &stores{
			transactions: memory.NewTransactionStore(),
			users:        memory.NewUserStore(),
			kyc:          memory.NewKYCStore(),
		}, func() {}, nil
	}

	if cfg.DatabaseURL == "" {
		// Demo mode: balance reads work, writes are dropped, reads are
		// empty. Only reachable with DEMO_MODE=true (config validation).
		logger.Warn("no database configured, running in demo mode: records will not persist")
		return &stores{
			transactions: noop.NewTransactionStore(),
			users:        noop.NewUserStore(),
			kyc:          noop.NewKYCStore(),
		}, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("migrations applied")
	}

	return &stores{
		transactions: pgstore.NewTransactionStore(pool),
		users:        pgstore.NewUserStore(pool),
		kyc:          pgstore.NewKYCStore(pool),
	}, pool.Close, nil
}
