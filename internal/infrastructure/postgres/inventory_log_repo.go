package postgres

import (
	"context"
	"fmt"

	"github.com/adevcorp-0/xero-shopify/internal/domain/inventorylog"

	"github.com/jackc/pgx/v5/pgxpool"
)

type InventoryLogRepository struct {
	pool *pgxpool.Pool
}

func NewInventoryLogRepository(pool *pgxpool.Pool) *InventoryLogRepository {
	return &InventoryLogRepository{pool: pool}
}

func (r *InventoryLogRepository) Append(ctx context.Context, e *inventorylog.Entry) error {
	const sql = `
		INSERT INTO inventory_logs (inventory_item_id, available, updated_at, received_at)
		VALUES ($1, $2, $3, NOW())
	`

	if _, err := r.pool.Exec(ctx, sql, e.InventoryItemID, e.Available, nullIfEmptyText(e.UpdatedAt)); err != nil {
		return fmt.Errorf("insert inventory log: %w", err)
	}

	return nil
}

func (r *InventoryLogRepository) ListRecent(ctx context.Context, limit int) ([]*inventorylog.Entry, error) {
	const sql = `
		SELECT id, inventory_item_id, available, COALESCE(updated_at, ''), received_at
		FROM inventory_logs
		ORDER BY received_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("query inventory logs: %w", err)
	}
	defer rows.Close()

	var entries []*inventorylog.Entry
	for rows.Next() {
		e := &inventorylog.Entry{}
		if err := rows.Scan(&e.ID, &e.InventoryItemID, &e.Available, &e.UpdatedAt, &e.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan inventory log: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}
