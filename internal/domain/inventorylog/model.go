package inventorylog

import (
	"time"
)

// Entry is one received inventory-level webhook, kept for the status page.
type Entry struct {
	ID              int64     `json:"id"`
	InventoryItemID int64     `json:"inventory_item_id"`
	Available       int64     `json:"available"`
	UpdatedAt       string    `json:"updated_at"`
	ReceivedAt      time.Time `json:"received_at"`
}
