package usecase

import (
	"context"

	"github.com/adevcorp-0/xero-shopify/internal/domain/itembill"
	"github.com/adevcorp-0/xero-shopify/internal/domain/paymentretry"
	"github.com/adevcorp-0/xero-shopify/internal/shopify"
	"github.com/adevcorp-0/xero-shopify/internal/xero"
)

// Commerce is the upstream storefront. Satisfied by *shopify.Client.
type Commerce interface {
	ResolveVariant(ctx context.Context, inventoryItemID int64) (*shopify.Variant, error)
	ResolveProduct(ctx context.Context, productID string) (*shopify.Product, error)
	ResolveUnitCost(ctx context.Context, productGID string, inventoryItemID int64) (float64, error)
	ResolveOrderReference(ctx context.Context, orderID int64) (string, error)
}

// Ledger is the downstream accounting system. Satisfied by *xero.Client.
type Ledger interface {
	FindItemByCode(ctx context.Context, code string) (*xero.Item, error)
	CreateItem(ctx context.Context, item *xero.Item) (*xero.Item, error)
	GetItemQuantity(ctx context.Context, itemID string) (float64, error)
	FindInvoiceByReference(ctx context.Context, reference string) (*xero.Invoice, error)
	CreateInvoice(ctx context.Context, inv *xero.Invoice) (*xero.Invoice, error)
	VoidInvoice(ctx context.Context, invoiceID string) error
	CreatePayment(ctx context.Context, invoiceID string, amount float64, accountCode string) error
	CreateCreditNote(ctx context.Context, cn *xero.CreditNote) (*xero.CreditNote, error)
	ContactExists(ctx context.Context, contactID string) (bool, error)
}

// ExpectationChecker consumes a matching self-caused inventory expectation,
// if one exists.
type ExpectationChecker interface {
	CheckAndConsume(ctx context.Context, sku string, locationID int64, observed int64) (reason string, matched bool, err error)
}

// ItemBillStore is the item->adjustment-bills index.
type ItemBillStore interface {
	Save(ctx context.Context, rec *itembill.Record) error
	ListByItemCode(ctx context.Context, itemCode string) ([]*itembill.Record, error)
	DeleteByInvoiceID(ctx context.Context, invoiceID string) error
}

// PaymentRetryStore queues payments that failed to record at sync time.
type PaymentRetryStore interface {
	Create(ctx context.Context, p *paymentretry.Retry) error
}
