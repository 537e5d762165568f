package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adevcorp-0/xero-shopify/internal/domain/credential"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenRepository stores the single Xero credential set. Row id is fixed at
// 1: a new connection replaces whatever was there before.
type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// Get returns the stored token, or (nil, nil) when none has been saved yet.
func (r *TokenRepository) Get(ctx context.Context) (*credential.Token, error) {
	const sql = `
		SELECT access_token, refresh_token, tenant_id, expires_at
		FROM xero_tokens
		WHERE id = 1
	`

	t := &credential.Token{}
	err := r.pool.QueryRow(ctx, sql).Scan(&t.AccessToken, &t.RefreshToken, &t.TenantID, &t.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query xero token: %w", err)
	}

	return t, nil
}

func (r *TokenRepository) Save(ctx context.Context, t *credential.Token) error {
	const sql = `
		INSERT INTO xero_tokens (id, access_token, refresh_token, tenant_id, expires_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    refresh_token = EXCLUDED.refresh_token,
		    tenant_id = EXCLUDED.tenant_id,
		    expires_at = EXCLUDED.expires_at
	`

	if _, err := r.pool.Exec(ctx, sql, t.AccessToken, t.RefreshToken, t.TenantID, t.ExpiresAt); err != nil {
		return fmt.Errorf("save xero token: %w", err)
	}

	return nil
}

// UpdateAccess persists a refreshed access/refresh token pair, keeping the
// tenant id.
func (r *TokenRepository) UpdateAccess(ctx context.Context, accessToken, refreshToken string, expiresAt time.Time) error {
	const sql = `
		UPDATE xero_tokens
		SET access_token = $1, refresh_token = $2, expires_at = $3
		WHERE id = 1
	`

	if _, err := r.pool.Exec(ctx, sql, accessToken, refreshToken, expiresAt); err != nil {
		return fmt.Errorf("update xero token: %w", err)
	}

	return nil
}
