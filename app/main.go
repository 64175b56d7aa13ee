package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/product-feeds/app/api"
	"github.com/lysyi3m/product-feeds/app/cfg"
	"github.com/lysyi3m/product-feeds/app/feed"
	"github.com/lysyi3m/product-feeds/app/products"
	"github.com/lysyi3m/product-feeds/app/source"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Product Feeds server", "version", appCfg.Version)

	catalog, err := source.NewLoader(appCfg.FeedsDir).Run()
	if err != nil {
		slog.Error("Failed to load feed sources", "dir", appCfg.FeedsDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Feed sources loaded", "count", catalog.Len(), "enabled", len(catalog.Enabled()))

	// Per-request timeouts are applied by the fetcher; the client only
	// bounds connection setup.
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent, appCfg.MaxBodyBytes)
	service := products.NewService(catalog, fetcher, feed.NewParser(), feed.NewRanker(),
		appCfg.FetchTimeout, appCfg.ResponseLimit)

	handler := api.NewHandler(service, appCfg.CheckWorkers, appCfg.Version)
	server := api.NewServer(handler)

	httpServer := api.NewHTTPServer(":"+appCfg.Port, server)

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Product Feeds server shutdown complete")
}
