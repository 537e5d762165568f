package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// probe pulls out just the fields a dedup key is derived from. Webhook
// redeliveries carry byte-identical payloads, so these fields are stable per
// logical event.
type probe struct {
	ID              int64  `json:"id"`
	OrderID         int64  `json:"order_id"`
	Name            string `json:"name"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
	InventoryItemID int64  `json:"inventory_item_id"`
}

func isOrderFamily(topic string) bool {
	return strings.HasPrefix(topic, "orders/") || strings.HasPrefix(topic, "refunds/")
}

// Key derives the dedup key for an event. Order-family events key on the
// order identifier plus its freshest timestamp; inventory events key on the
// inventory item id plus updated_at. The topic is part of the hash so an
// orders/cancelled arriving inside the TTL of the orders/paid for the same
// order is never treated as its duplicate.
func Key(topic string, body []byte) (string, error) {
	var p probe
	if err := json.Unmarshal(body, &p); err != nil {
		return "", fmt.Errorf("derive dedup key: %w", err)
	}

	var id, ts string
	if isOrderFamily(topic) {
		switch {
		case p.ID != 0:
			id = strconv.FormatInt(p.ID, 10)
		case p.OrderID != 0:
			id = strconv.FormatInt(p.OrderID, 10)
		default:
			id = p.Name
		}
		switch {
		case p.UpdatedAt != "":
			ts = p.UpdatedAt
		case p.CreatedAt != "":
			ts = p.CreatedAt
		default:
			ts = p.Name
		}
	} else {
		id = strconv.FormatInt(p.InventoryItemID, 10)
		ts = p.UpdatedAt
	}

	sum := sha256.Sum256([]byte(topic + "|" + id + "|" + ts))
	return hex.EncodeToString(sum[:]), nil
}
