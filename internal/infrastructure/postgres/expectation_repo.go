package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/adevcorp-0/xero-shopify/internal/domain/expectation"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExpectationRepository struct {
	pool *pgxpool.Pool
}

func NewExpectationRepository(pool *pgxpool.Pool) *ExpectationRepository {
	return &ExpectationRepository{pool: pool}
}

func (r *ExpectationRepository) Insert(ctx context.Context, e *expectation.Expectation) error {
	const sql = `
		INSERT INTO inventory_expectations (id, sku, location_id, expected_quantity, reason, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var executor interface {
		Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	} = r.pool

	if tx := GetTx(ctx); tx != nil {
		executor = tx
	}

	_, err := executor.Exec(ctx, sql,
		e.ID, e.SKU, e.LocationID, e.ExpectedQuantity, e.Reason, e.CreatedAt, e.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert expectation: %w", err)
	}

	return nil
}

// ConsumeMatch deletes at most one non-expired expectation matching the
// observed (sku, location, quantity) and returns its reason. The locked
// subselect keeps two concurrent webhooks from consuming the same row.
func (r *ExpectationRepository) ConsumeMatch(ctx context.Context, sku string, locationID int64, observed int64) (string, bool, error) {
	const sql = `
		DELETE FROM inventory_expectations
		WHERE id = (
			SELECT id
			FROM inventory_expectations
			WHERE sku = $1 AND location_id = $2 AND expected_quantity = $3 AND expires_at > NOW()
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING reason
	`

	var reason string
	err := r.pool.QueryRow(ctx, sql, sku, locationID, observed).Scan(&reason)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("consume expectation: %w", err)
	}

	return reason, true, nil
}

func (r *ExpectationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const sql = `
		DELETE FROM inventory_expectations
		WHERE expires_at <= NOW()
	`

	tag, err := r.pool.Exec(ctx, sql)
	if err != nil {
		return 0, fmt.Errorf("delete expired expectations: %w", err)
	}

	return tag.RowsAffected(), nil
}
