package itembill

import (
	"time"
)

// Record maps a Xero item code to an adjustment bill that changed its
// on-hand quantity. The item->bills index is what makes later bulk-voiding
// of adjustments possible when an item's quantity has to be recomputed.
type Record struct {
	ID        string    `json:"id"`
	ItemCode  string    `json:"item_code"`
	InvoiceID string    `json:"invoice_id"`
	Quantity  int64     `json:"quantity"`
	Reference string    `json:"reference"`
	SyncedAt  time.Time `json:"synced_at"`
}
