// Package expectation tracks inventory changes this system caused itself.
// When the commerce platform echoes such a change back as a webhook, the
// matching expectation is consumed and the event skipped, breaking the
// self-sync loop.
package expectation

import (
	"context"
	"time"

	domain "github.com/adevcorp-0/xero-shopify/internal/domain/expectation"

	"github.com/google/uuid"
)

// Store is the durable expectation store. ConsumeMatch must be atomic: two
// concurrent lookups for the same (sku, location, quantity) may consume at
// most one row between them.
type Store interface {
	Insert(ctx context.Context, e *domain.Expectation) error
	ConsumeMatch(ctx context.Context, sku string, locationID int64, observed int64) (reason string, matched bool, err error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type Ledger struct {
	store Store
	ttl   time.Duration
}

func NewLedger(store Store, ttl time.Duration) *Ledger {
	return &Ledger{store: store, ttl: ttl}
}

// Record registers an upcoming self-caused inventory change. Multiple
// expectations for the same (sku, location) may coexist; they differ only by
// quantity.
func (l *Ledger) Record(ctx context.Context, sku string, locationID int64, expectedQty int64, reason string) (*domain.Expectation, error) {
	now := time.Now().UTC()
	e := &domain.Expectation{
		ID:               uuid.New().String(),
		SKU:              sku,
		LocationID:       locationID,
		ExpectedQuantity: expectedQty,
		Reason:           reason,
		CreatedAt:        now,
		ExpiresAt:        now.Add(l.ttl),
	}

	if err := l.store.Insert(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

// CheckAndConsume reports whether the observed quantity matches a recorded
// expectation. A match is single-use: the expectation is deleted as part of
// the check. Matching is exact on quantity.
func (l *Ledger) CheckAndConsume(ctx context.Context, sku string, locationID int64, observed int64) (string, bool, error) {
	return l.store.ConsumeMatch(ctx, sku, locationID, observed)
}

// Compact removes expired expectations that were never matched.
func (l *Ledger) Compact(ctx context.Context) (int64, error) {
	return l.store.DeleteExpired(ctx)
}
