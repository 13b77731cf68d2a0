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

	"holdings_backend/internal/app/config"
	"holdings_backend/internal/app/di"
	"holdings_backend/internal/app/router"
	holdingshandler "holdings_backend/internal/feature/holdings/transport/handler"
	platformhandler "holdings_backend/internal/platform/http/handler"
	"holdings_backend/internal/platform/logger"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := di.Build(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("failed to close resources", "error", err)
		}
	}()

	// Handler
	holdingsH := holdingshandler.NewHoldingsHandler(app.Compare, app.Registry)

	var store platformhandler.Pinger
	if app.Pinger != nil {
		store = app.Pinger
	}

	// ルータ生成
	r := router.NewRouter(holdingsH, store, cfg.JWTSecret)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("listening", "addr", cfg.HTTPAddr, "store", app.Location)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
