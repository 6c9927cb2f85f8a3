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

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/HeisenPear/saas-localBizz/internal/app"
	"github.com/HeisenPear/saas-localBizz/internal/appointments"
	"github.com/HeisenPear/saas-localBizz/internal/auth"
	"github.com/HeisenPear/saas-localBizz/internal/clients"
	"github.com/HeisenPear/saas-localBizz/internal/dashboard"
	"github.com/HeisenPear/saas-localBizz/internal/invoicing"
	"github.com/HeisenPear/saas-localBizz/internal/platform/cache"
	"github.com/HeisenPear/saas-localBizz/internal/platform/db"
	"github.com/HeisenPear/saas-localBizz/internal/quotes"
	"github.com/HeisenPear/saas-localBizz/jobs"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	if err := db.Migrate(cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, stats cache disabled", slog.Any("error", err))
		redisClient = nil
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := auth.NewService(auth.NewRepository(pool), issuer)

	clientService := clients.NewService(clients.NewRepository(pool))
	invoiceService := invoicing.NewService(invoicing.NewRepository(pool), clientService, cfg.InvoiceNumberPrefix, logger)
	quoteService := quotes.NewService(quotes.NewRepository(pool), clientService, invoiceService, cfg.QuoteNumberPrefix)
	appointmentService := appointments.NewService(appointments.NewRepository(pool))
	dashboardService := dashboard.NewService(dashboard.NewRepository(pool), redisClient, cfg.StatsCacheTTL, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterDeps{
		Middleware:   app.MiddlewareConfig{Logger: logger, Config: cfg},
		TokenIssuer:  issuer,
		Auth:         auth.NewHandler(authService),
		Clients:      clients.NewHandler(clientService),
		Invoices:     invoicing.NewHandler(invoiceService),
		Quotes:       quotes.NewHandler(quoteService),
		Appointments: appointments.NewHandler(appointmentService),
		Dashboard:    dashboard.NewHandler(dashboardService),
		Jobs:         jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
