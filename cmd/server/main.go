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

	"github.com/xtding233/gacha-odds/internal/config"
	"github.com/xtding233/gacha-odds/internal/game"
	"github.com/xtding233/gacha-odds/internal/logger"
	"github.com/xtding233/gacha-odds/internal/metrics"
	"github.com/xtding233/gacha-odds/internal/server"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "gacha-odds",
		Version:     version,
	})

	loader := game.NewLoader(cfg.ProfileDir)
	if _, err := loader.Resolve("", ""); err != nil {
		return fmt.Errorf("default profile: %w", err)
	}

	srv := server.New(server.Options{
		Resolver:  loader,
		Logger:    log,
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
		Limits:    server.Limits{MaxDraws: cfg.MaxDraws, MaxTrials: cfg.MaxTrials},
	})

	if cfg.WatchInterval > 0 {
		w := game.NewWatcher(cfg.ProfileDir, cfg.WatchInterval, func(path string) {
			log.Info("profile changed, reloading", "path", path)
			loader.Invalidate()
			srv.Purge()
			metrics.ProfileReloads.Inc()
		})
		w.Start()
		defer w.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health, err := server.NewHealthServer(cfg.GRPCAddr, log)
	if err != nil {
		return err
	}
	grpcErr := make(chan error, 1)
	go func() { grpcErr <- health.Serve(ctx) }()

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}
	httpErr := make(chan error, 1)
	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr, "profiles", cfg.ProfileDir)
		httpErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-httpErr:
		stop()
		<-grpcErr
		return fmt.Errorf("serve http: %w", err)
	case err := <-grpcErr:
		stop()
		_ = httpServer.Close()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return <-grpcErr
}
