package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/giovaniif/motorent/infra/auth"
	"github.com/giovaniif/motorent/infra/config"
	"github.com/giovaniif/motorent/infra/gateways"
	"github.com/giovaniif/motorent/infra/logging"
	"github.com/giovaniif/motorent/infra/repositories"
	"github.com/giovaniif/motorent/infra/scheduler"
	"github.com/giovaniif/motorent/infra/tracing"
	"github.com/giovaniif/motorent/use_cases/board"
	"github.com/giovaniif/motorent/use_cases/cancel"
	"github.com/giovaniif/motorent/use_cases/catalog"
	"github.com/giovaniif/motorent/use_cases/check"
	"github.com/giovaniif/motorent/use_cases/checkout"
	"github.com/giovaniif/motorent/use_cases/fleet"
	"github.com/giovaniif/motorent/use_cases/history"
	"github.com/giovaniif/motorent/use_cases/login"
	"github.com/giovaniif/motorent/use_cases/pickup"
	"github.com/giovaniif/motorent/use_cases/profile"
	"github.com/giovaniif/motorent/use_cases/quote"
	"github.com/giovaniif/motorent/use_cases/returns"
	"github.com/giovaniif/motorent/use_cases/selection"
	"github.com/giovaniif/motorent/use_cases/support"
	"github.com/giovaniif/motorent/use_cases/sweep"
	"github.com/giovaniif/motorent/use_cases/transition"
	"github.com/giovaniif/motorent/use_cases/users"
)

const shutdownTimeout = 10 * time.Second

// NewApp builds every use case on top of the given backends.
func NewApp(cfg config.Config, b *Backends, logger *slog.Logger) *App {
	t := transition.New(b.Rentals, b.Events, logger)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	return &App{
		Logger:          logger,
		Tokens:          tokens,
		CheckoutTimeout: cfg.CheckoutTimeout,

		Login:     login.NewLogin(b.Users, tokens),
		Selection: selection.NewSelection(b.Sessions),
		Catalog:   catalog.NewCatalog(b.Bikes, b.Rentals, b.Sessions),
		Check:     check.NewCheck(b.Bikes, b.Rentals),
		Quote:     quote.NewQuote(b.Bikes, b.Rentals, b.Sessions),
		Checkout: checkout.NewCheckout(
			b.Bikes,
			b.Rentals,
			b.Sessions,
			gateways.NewPaymentGatewayMemory(cfg.PaymentLimit),
			b.Checkout,
			b.Events,
			gateways.NewSleeper(),
			logger,
		),
		History: history.NewHistory(b.Rentals),
		Profile: profile.NewProfile(b.Users),
		Cancel:  cancel.NewCancel(t),
		Pickup:  pickup.NewPickup(t),
		Return:  returns.NewReturn(t),
		Board:   board.NewBoard(b.Rentals, b.Bikes, b.Users, b.Messages),
		Fleet:   fleet.NewFleet(b.Bikes, b.Rentals),
		Users:   users.NewUsers(b.Users),
		Support: support.NewSupport(b.Assistant, b.Messages, cfg.AssistantTimeout),
	}
}

func StartServer() {
	cfg := config.Load()
	logger, logClosers := logging.New(logging.Options{
		ServiceName: cfg.ServiceName,
		LokiUrl:     cfg.LokiURL,
		LogFile:     cfg.LogFile,
	})
	defer logClosers.Close()
	slog.SetDefault(logger)

	if shutdownTracing := tracing.Init(cfg.OtelEndpoint, cfg.ServiceName); shutdownTracing != nil {
		defer shutdownTracing(context.Background())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backends, err := OpenBackends(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open backends", "error", err)
		return
	}
	defer backends.Close(context.Background())

	if cfg.SeedData {
		seed := repositories.NewSeed(time.Now())
		if err := seed.Load(ctx, backends.Bikes, backends.Rentals, backends.Users, backends.Messages); err != nil {
			logger.Error("failed to seed data", "error", err)
			return
		}
	}

	jobs, err := scheduler.New(logger)
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		return
	}
	overdue := sweep.NewSweep(backends.Rentals, backends.Events, logger)
	err = jobs.Every("complete-overdue-rentals", cfg.SweepInterval, func(ctx context.Context) error {
		_, err := overdue.CompleteOverdue(ctx)
		return err
	})
	if err != nil {
		logger.Error("failed to schedule sweep", "error", err)
		return
	}
	jobs.Start()
	defer jobs.Shutdown()

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: NewRouter(NewApp(cfg, backends, logger)),
	}
	go func() {
		logger.Info("http server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "error", err)
	}
}
