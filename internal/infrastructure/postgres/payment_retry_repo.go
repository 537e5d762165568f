package postgres

import (
	"context"
	"fmt"

	"github.com/adevcorp-0/xero-shopify/internal/domain/paymentretry"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRetryRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRetryRepository(pool *pgxpool.Pool) *PaymentRetryRepository {
	return &PaymentRetryRepository{pool: pool}
}

func (r *PaymentRetryRepository) Create(ctx context.Context, p *paymentretry.Retry) error {
	const sql = `
		INSERT INTO payment_retries (id, invoice_id, amount, account_code, status, attempts, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`

	var executor interface {
		Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	} = r.pool

	if tx := GetTx(ctx); tx != nil {
		executor = tx
	}

	_, err := executor.Exec(ctx, sql,
		p.ID, p.InvoiceID, p.Amount, p.AccountCode, p.Status, p.Attempts, nullIfEmptyText(p.LastError), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment retry: %w", err)
	}

	return nil
}

// FetchBatch claims up to limit new retries, flipping them to processing so
// concurrent sweepers never pick up the same row.
func (r *PaymentRetryRepository) FetchBatch(ctx context.Context, limit int) ([]*paymentretry.Retry, error) {
	const sql = `
		WITH claimed AS (
			SELECT id
			FROM payment_retries
			WHERE status = 'new'
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE payment_retries
		SET status = 'processing', updated_at = NOW()
		WHERE id IN (SELECT id FROM claimed)
		RETURNING id, invoice_id, amount, account_code, status, attempts, COALESCE(last_error, ''), created_at, updated_at
	`

	rows, err := r.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("claim payment retries: %w", err)
	}
	defer rows.Close()

	var retries []*paymentretry.Retry
	for rows.Next() {
		p := &paymentretry.Retry{}
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.AccountCode, &p.Status, &p.Attempts, &p.LastError, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan payment retry: %w", err)
		}
		retries = append(retries, p)
	}

	return retries, nil
}

func (r *PaymentRetryRepository) MarkDone(ctx context.Context, ids []string) error {
	const sql = `
		UPDATE payment_retries
		SET status = 'done', updated_at = NOW()
		WHERE id = ANY($1)
	`

	if _, err := r.pool.Exec(ctx, sql, ids); err != nil {
		return fmt.Errorf("mark payment retries done: %w", err)
	}

	return nil
}

// Release puts a failed attempt back in the queue with the error recorded.
func (r *PaymentRetryRepository) Release(ctx context.Context, id string, lastError string) error {
	const sql = `
		UPDATE payment_retries
		SET status = 'new', attempts = attempts + 1, last_error = $2, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, sql, id, lastError); err != nil {
		return fmt.Errorf("release payment retry: %w", err)
	}

	return nil
}
