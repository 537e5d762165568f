package postgres

import (
	"context"
	"fmt"

	"github.com/adevcorp-0/xero-shopify/internal/domain/itembill"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ItemBillRepository struct {
	pool *pgxpool.Pool
}

func NewItemBillRepository(pool *pgxpool.Pool) *ItemBillRepository {
	return &ItemBillRepository{pool: pool}
}

func (r *ItemBillRepository) Save(ctx context.Context, rec *itembill.Record) error {
	const sql = `
		INSERT INTO xero_item_bills (id, item_code, invoice_id, quantity, reference, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var executor interface {
		Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	} = r.pool

	if tx := GetTx(ctx); tx != nil {
		executor = tx
	}

	_, err := executor.Exec(ctx, sql,
		rec.ID, rec.ItemCode, rec.InvoiceID, rec.Quantity, nullIfEmptyText(rec.Reference), rec.SyncedAt)
	if err != nil {
		return fmt.Errorf("insert item bill: %w", err)
	}

	return nil
}

func (r *ItemBillRepository) ListByItemCode(ctx context.Context, itemCode string) ([]*itembill.Record, error) {
	const sql = `
		SELECT id, item_code, invoice_id, quantity, COALESCE(reference, ''), synced_at
		FROM xero_item_bills
		WHERE item_code = $1
		ORDER BY synced_at ASC
	`

	rows, err := r.pool.Query(ctx, sql, itemCode)
	if err != nil {
		return nil, fmt.Errorf("query item bills: %w", err)
	}
	defer rows.Close()

	var records []*itembill.Record
	for rows.Next() {
		rec := &itembill.Record{}
		if err := rows.Scan(&rec.ID, &rec.ItemCode, &rec.InvoiceID, &rec.Quantity, &rec.Reference, &rec.SyncedAt); err != nil {
			return nil, fmt.Errorf("scan item bill: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func (r *ItemBillRepository) DeleteByInvoiceID(ctx context.Context, invoiceID string) error {
	const sql = `
		DELETE FROM xero_item_bills
		WHERE invoice_id = $1
	`

	var executor interface {
		Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	} = r.pool

	if tx := GetTx(ctx); tx != nil {
		executor = tx
	}

	if _, err := executor.Exec(ctx, sql, invoiceID); err != nil {
		return fmt.Errorf("delete item bill: %w", err)
	}

	return nil
}

func nullIfEmptyText(s string) any {
	if s == "" {
		return nil
	}
	return s
}
