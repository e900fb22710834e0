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

	"github.com/kjannette/fng-correlation-backend/internal/api"
	"github.com/kjannette/fng-correlation-backend/internal/config"
	"github.com/kjannette/fng-correlation-backend/internal/external"
	"github.com/kjannette/fng-correlation-backend/internal/httputil"
)

const banner = `
╔══════════════════════════════════════╗
║   Fear & Greed Correlation Gateway   ║
║                                      ║
╚══════════════════════════════════════╝
`

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

	// Upstream clients
	opts := external.Options{
		Timeout: cfg.UpstreamTimeout,
		Retry: httputil.RetryConfig{
			MaxAttempts: cfg.UpstreamAttempts,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    5 * time.Second,
		},
	}
	coingecko := external.NewCoinGeckoClient(cfg.CoinGeckoBaseURL, cfg.CoinGeckoAPIKey, opts)
	fearGreed := external.NewFearGreedClient(cfg.FearGreedURL, opts)

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(cfg, coingecko, fearGreed)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
