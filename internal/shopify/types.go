package shopify

// Webhook topics this service reacts to.
const (
	TopicInventoryLevelsUpdate   = "inventory_levels/update"
	TopicOrdersCreate            = "orders/create"
	TopicOrdersPaid              = "orders/paid"
	TopicOrdersUpdated           = "orders/updated"
	TopicOrdersCancelled         = "orders/cancelled"
	TopicRefundsCreate           = "refunds/create"
	TopicProductsUpdate          = "products/update"
	TopicInventoryTransferCreate = "inventory_transfers/create"
)

// Webhook headers.
const (
	HeaderTopic = "X-Shopify-Topic"
	HeaderHmac  = "X-Shopify-Hmac-Sha256"
)

// InventoryLevelPayload is the body of an inventory_levels/update webhook.
type InventoryLevelPayload struct {
	InventoryItemID int64  `json:"inventory_item_id"`
	LocationID      int64  `json:"location_id"`
	Available       int64  `json:"available"`
	UpdatedAt       string `json:"updated_at"`
}

// OrderPayload is the body of the orders/* webhooks. Money fields are
// strings on the wire, as Shopify sends them.
type OrderPayload struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
	CancelledAt   string         `json:"cancelled_at"`
	Customer      *Customer      `json:"customer"`
	LineItems     []LineItem     `json:"line_items"`
	ShippingLines []ShippingLine `json:"shipping_lines"`
}

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LineItem struct {
	Title         string `json:"title"`
	Quantity      int64  `json:"quantity"`
	Price         string `json:"price"`
	TotalDiscount string `json:"total_discount"`
}

type ShippingLine struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

// RefundPayload is the body of a refunds/create webhook. Refunds reference
// their order by numeric id only; the order name has to be resolved.
type RefundPayload struct {
	ID              int64            `json:"id"`
	OrderID         int64            `json:"order_id"`
	CreatedAt       string           `json:"created_at"`
	Note            string           `json:"note"`
	RefundLineItems []RefundLineItem `json:"refund_line_items"`
}

type RefundLineItem struct {
	Quantity int64          `json:"quantity"`
	LineItem RefundLineInfo `json:"line_item"`
}

type RefundLineInfo struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

// Variant is the subset of a product variant the sync needs, resolved from
// an inventory item id via the Admin GraphQL API.
type Variant struct {
	ID      string  `json:"id"`
	SKU     string  `json:"sku"`
	Title   string  `json:"title"`
	Price   string  `json:"price"`
	Product Product `json:"product"`
}

type Product struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	BodyHTML string `json:"bodyHtml"`
}
