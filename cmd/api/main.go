package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/billroom/internal/app"
	"github.com/MrJamesThe3rd/billroom/internal/auth"
	"github.com/MrJamesThe3rd/billroom/internal/config"
	billroomHttp "github.com/MrJamesThe3rd/billroom/internal/http"
	authHandler "github.com/MrJamesThe3rd/billroom/internal/http/auth"
	chatHandler "github.com/MrJamesThe3rd/billroom/internal/http/chat"
	staffHandler "github.com/MrJamesThe3rd/billroom/internal/http/staff"
	systemHandler "github.com/MrJamesThe3rd/billroom/internal/http/system"
	txHandler "github.com/MrJamesThe3rd/billroom/internal/http/transaction"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := slog.Default().With("app", cfg.App.Name)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(cfg.Auth.Password, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, a.Clock)
	if err != nil {
		slog.Error("failed to create auth service", "error", err)
		os.Exit(1)
	}

	var (
		authH   = authHandler.NewHandler(authService, a.Engine)
		txH      = txHandler.NewHandler(a.Engine)
		staffH   = staffHandler.NewHandler(a.Engine)
		chatH    = chatHandler.NewHandler(a.Engine)
		systemH  = systemHandler.NewHandler(a.Engine)
	)

	router := billroomHttp.New(cfg.CORS.AllowedOrigins, authH, txH, staffH, chatH, systemH, a.Metrics.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	engineDone := make(chan error, 1)
	go func() { engineDone <- a.Run(ctx) }()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		stop()
	}

	if err := <-engineDone; err != nil {
		slog.Error("engine stopped", "error", err)
		os.Exit(1)
	}

	slog.Info("shut down")
}
