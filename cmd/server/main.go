package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vntlabs/vnt-swap-backend/internal/api"
	"github.com/vntlabs/vnt-swap-backend/internal/config"
	"github.com/vntlabs/vnt-swap-backend/internal/db"
	"github.com/vntlabs/vnt-swap-backend/internal/ethereum"
	"github.com/vntlabs/vnt-swap-backend/internal/notifications"
	"github.com/vntlabs/vnt-swap-backend/internal/repository"
	"github.com/vntlabs/vnt-swap-backend/internal/scheduler"
	"github.com/vntlabs/vnt-swap-backend/internal/swap"
	"github.com/vntlabs/vnt-swap-backend/internal/wallet"
)

const banner = `
╔══════════════════════════════════════╗
║        VNT Swap Backend v0.1         ║
║                                      ║
╚══════════════════════════════════════╝
`

const apiPort = 3001

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if err := db.TestConnection(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Test query failed: %v\n", err)
		os.Exit(1)
	}

	// Wallet + chain
	provider, err := wallet.NewKeyProvider(cfg.PrivateKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WALLET] %v\n", err)
		os.Exit(1)
	}

	client, err := ethereum.NewClient(
		cfg.Network.RPCURL,
		provider,
		cfg.Network.ChainID,
		cfg.GasLimit,
		cfg.GasMultiplier,
		time.Duration(cfg.ReceiptTimeoutSeconds)*time.Second,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[CHAIN] %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	if err := client.VerifyChain(startupCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[CHAIN] %v\n", err)
		os.Exit(1)
	}

	ledger, err := ethereum.NewVNTSwap(
		client,
		cfg.Network.SwapAddress,
		cfg.Network.VNTTokenAddress,
		cfg.Network.USDTTokenAddress,
		cfg.Network.ExplorerTxPrefix,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[CHAIN] %v\n", err)
		os.Exit(1)
	}
	if err := ledger.Init(startupCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[CHAIN] Contract init failed: %v\n", err)
		os.Exit(1)
	}

	// Core wiring
	sessions := wallet.NewManager(provider, client.ChainID())
	market := swap.NewMarket()
	gate := swap.NewGate(ledger, market)
	engine := swap.NewEngine(ledger, market, gate)
	swapRepo := repository.NewSwapRepo(pool)
	priceRepo := repository.NewPriceRepo(pool)
	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName)
	presenter := swap.LogPresenter{}

	orch := swap.NewOrchestrator(ledger, market, gate, sessions, presenter, swapRepo, notify, cfg.Network.Name)

	sessions.OnInvalidate = func(reason string) {
		presenter.HideQuote()
		presenter.SetControls(false, false)
	}

	// Initial market load; the watcher keeps it fresh from here on.
	if err := orch.RefreshMarket(startupCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[MARKET] Initial load failed: %v\n", err)
		os.Exit(1)
	}

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sessions.Watch(ctx)

	// 1. API server
	srv := api.NewServer(pool, ledger, market, engine, orch, sessions, presenter,
		cfg.Network.VNTTokenAddress, apiPort, cfg.APIKey, cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// 2. Market watcher
	watcher := scheduler.NewMarketWatcher(ledger, market, priceRepo, notify,
		time.Duration(cfg.MarketRefreshSeconds)*time.Second)
	watcher.Start()

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	watcher.Stop()
	provider.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
