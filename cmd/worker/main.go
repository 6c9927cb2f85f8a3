package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/HeisenPear/saas-localBizz/internal/app"
	"github.com/HeisenPear/saas-localBizz/internal/clients"
	"github.com/HeisenPear/saas-localBizz/internal/invoicing"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	clientService := clients.NewService(clients.NewRepository(pool))
	invoiceService := invoicing.NewService(invoicing.NewRepository(pool), clientService, cfg.InvoiceNumberPrefix, logger)
	quoteService := quotes.NewService(quotes.NewRepository(pool), clientService, invoiceService, cfg.QuoteNumberPrefix)

	overdueJob := jobs.NewOverdueSweepJob(invoiceService, logger)
	expiryJob := jobs.NewExpirySweepJob(quoteService, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskInvoiceOverdueSweep, Handler: overdueJob.Handle},
			{Type: jobs.TaskQuoteExpirySweep, Handler: expiryJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			// Both sweeps run shortly after midnight, once per day.
			{Spec: "5 0 * * *", Task: jobs.NewInvoiceOverdueSweepTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "10 0 * * *", Task: jobs.NewQuoteExpirySweepTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker", slog.Any("error", err))
		os.Exit(1)
	}
}
