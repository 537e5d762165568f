package expectation

import (
	"time"
)

// Expectation records an inventory change the system itself caused, so the
// echo webhook for it can be recognized and skipped. Matching is exact on
// quantity and single-use.
type Expectation struct {
	ID               string    `json:"id"`
	SKU              string    `json:"sku"`
	LocationID       int64     `json:"location_id"`
	ExpectedQuantity int64     `json:"expected_quantity"`
	Reason           string    `json:"reason"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}
