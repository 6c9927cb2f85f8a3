package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInvoiceOverdueSweep flips open invoices past due to overdue.
	TaskInvoiceOverdueSweep = "invoice:overdue_sweep"
	// TaskQuoteExpirySweep flips sent quotes past validity to expired.
	TaskQuoteExpirySweep = "quote:expiry_sweep"
)

// NewInvoiceOverdueSweepTask constructs the overdue sweep task. The
// sweep takes no parameters; it always covers every owner.
func NewInvoiceOverdueSweepTask() *asynq.Task {
	return asynq.NewTask(TaskInvoiceOverdueSweep, nil)
}

// NewQuoteExpirySweepTask constructs the quote expiry sweep task.
func NewQuoteExpirySweepTask() *asynq.Task {
	return asynq.NewTask(TaskQuoteExpirySweep, nil)
}

// InvoiceSweeper is the slice of the invoicing service the sweep needs.
type InvoiceSweeper interface {
	SweepOverdue(ctx context.Context) (int64, error)
}

// QuoteSweeper is the slice of the quotes service the sweep needs.
type QuoteSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// OverdueSweepJob runs the invoice overdue sweep.
type OverdueSweepJob struct {
	invoices InvoiceSweeper
	logger   *slog.Logger
}

// NewOverdueSweepJob constructs the job.
func NewOverdueSweepJob(invoices InvoiceSweeper, logger *slog.Logger) *OverdueSweepJob {
	return &OverdueSweepJob{invoices: invoices, logger: logger}
}

// Handle processes TaskInvoiceOverdueSweep tasks.
func (j *OverdueSweepJob) Handle(ctx context.Context, _ *asynq.Task) error {
	n, err := j.invoices.SweepOverdue(ctx)
	if err != nil {
		j.logger.Error("overdue sweep", slog.Any("error", err))
		return err
	}
	j.logger.Info("overdue sweep done", slog.Int64("flipped", n))
	return nil
}

// ExpirySweepJob runs the quote expiry sweep.
type ExpirySweepJob struct {
	quotes QuoteSweeper
	logger *slog.Logger
}

// NewExpirySweepJob constructs the job.
func NewExpirySweepJob(quotes QuoteSweeper, logger *slog.Logger) *ExpirySweepJob {
	return &ExpirySweepJob{quotes: quotes, logger: logger}
}

// Handle processes TaskQuoteExpirySweep tasks.
func (j *ExpirySweepJob) Handle(ctx context.Context, _ *asynq.Task) error {
	n, err := j.quotes.SweepExpired(ctx)
	if err != nil {
		j.logger.Error("quote expiry sweep", slog.Any("error", err))
		return err
	}
	j.logger.Info("quote expiry sweep done", slog.Int64("flipped", n))
	return nil
}
