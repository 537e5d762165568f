package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/adevcorp-0/xero-shopify/internal/domain/paymentretry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	paymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sweeper_payments_recorded_total",
		Help: "The total number of retried payments successfully recorded in Xero",
	})
	paymentFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sweeper_payment_failures_total",
		Help: "The total number of failed payment retry attempts",
	})
)

// PaymentRecorder is the single ledger call the poller needs.
type PaymentRecorder interface {
	CreatePayment(ctx context.Context, invoiceID string, amount float64, accountCode string) error
}

// RetryQueue is the claim/mark lifecycle over payment_retries.
type RetryQueue interface {
	FetchBatch(ctx context.Context, limit int) ([]*paymentretry.Retry, error)
	MarkDone(ctx context.Context, ids []string) error
	Release(ctx context.Context, id string, lastError string) error
}

// PaymentRetryPoller drains queued payments that failed to record at order
// sync time, closing the authorised-but-unpaid invoice gap.
type PaymentRetryPoller struct {
	queue    RetryQueue
	ledger   PaymentRecorder
	interval time.Duration
	batch    int
}

func NewPaymentRetryPoller(queue RetryQueue, ledger PaymentRecorder) *PaymentRetryPoller {
	return &PaymentRetryPoller{
		queue:    queue,
		ledger:   ledger,
		interval: 30 * time.Second,
		batch:    10,
	}
}

func (p *PaymentRetryPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.Info("payment retry poller started", "interval", p.interval.String())

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				slog.Error("failed to process payment retry batch", "error", err)
			}
		}
	}
}

func (p *PaymentRetryPoller) processBatch(ctx context.Context) error {
	retries, err := p.queue.FetchBatch(ctx, p.batch)
	if err != nil {
		return err
	}
	if len(retries) == 0 {
		return nil
	}

	var done []string
	for _, retry := range retries {
		callCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := p.ledger.CreatePayment(callCtx, retry.InvoiceID, retry.Amount, retry.AccountCode)
		cancel()

		if err != nil {
			paymentFailures.Inc()
			slog.Warn("payment retry failed",
				"invoice_id", retry.InvoiceID, "attempts", retry.Attempts+1, "error", err)
			if relErr := p.queue.Release(ctx, retry.ID, err.Error()); relErr != nil {
				slog.Error("failed to release payment retry", "id", retry.ID, "error", relErr)
			}
			continue
		}

		paymentsRecorded.Inc()
		slog.Info("recorded queued payment", "invoice_id", retry.InvoiceID, "amount", retry.Amount)
		done = append(done, retry.ID)
	}

	if len(done) > 0 {
		if err := p.queue.MarkDone(ctx, done); err != nil {
			return err
		}
	}

	return nil
}
