package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adevcorp-0/xero-shopify/internal/domain/paymentretry"
	"github.com/adevcorp-0/xero-shopify/internal/shopify"
	"github.com/adevcorp-0/xero-shopify/internal/xero"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fallbackContactName is used when an order carries no customer record.
const fallbackContactName = "Shopify Customer"

type SyncOrderPaidConfig struct {
	SalesAccountCode   string
	PaymentAccountCode string
}

// SyncOrderPaid mirrors a paid Shopify order as an authorised ACCREC invoice
// plus a full payment. The order name is the invoice reference and the
// idempotency key: an existing invoice with that reference means the order
// was already synced.
type SyncOrderPaid struct {
	ledger  Ledger
	retries PaymentRetryStore
	cfg     SyncOrderPaidConfig
}

func NewSyncOrderPaid(ledger Ledger, retries PaymentRetryStore, cfg SyncOrderPaidConfig) *SyncOrderPaid {
	return &SyncOrderPaid{ledger: ledger, retries: retries, cfg: cfg}
}

func (uc *SyncOrderPaid) Execute(ctx context.Context, order shopify.OrderPayload) error {
	if order.Name == "" {
		slog.Warn("order has no name, skipping", "order_id", order.ID)
		return nil
	}

	existing, err := uc.ledger.FindInvoiceByReference(ctx, order.Name)
	if err != nil {
		return fmt.Errorf("find invoice %s: %w", order.Name, err)
	}
	if existing != nil {
		slog.Info("invoice already exists, skipping", "reference", order.Name, "invoice_id", existing.InvoiceID)
		return nil
	}

	lines := buildInvoiceLines(order, uc.cfg.SalesAccountCode)
	if len(lines) == 0 {
		slog.Warn("order has no billable lines, skipping", "reference", order.Name)
		return nil
	}

	inv, err := uc.ledger.CreateInvoice(ctx, &xero.Invoice{
		Type:      xero.TypeAccRec,
		Contact:   xero.Contact{Name: contactName(order.Customer)},
		Date:      time.Now().Format("2006-01-02"),
		LineItems: lines,
		Status:    xero.StatusAuthorised,
		Reference: order.Name,
	})
	if err != nil {
		return fmt.Errorf("create invoice %s: %w", order.Name, err)
	}
	slog.Info("created invoice", "reference", order.Name, "invoice_id", inv.InvoiceID, "total", inv.Total)

	if inv.Total <= 0 {
		return nil
	}

	// Shopify orders are paid at order time; the invoice should show as paid,
	// not outstanding. A failed payment recording is queued for the sweeper
	// rather than failing the webhook: the invoice already exists.
	if err := uc.ledger.CreatePayment(ctx, inv.InvoiceID, inv.Total, uc.cfg.PaymentAccountCode); err != nil {
		slog.Error("payment recording failed, queueing retry", "invoice_id", inv.InvoiceID, "error", err)

		retry := &paymentretry.Retry{
			ID:          uuid.New().String(),
			InvoiceID:   inv.InvoiceID,
			Amount:      inv.Total,
			AccountCode: uc.cfg.PaymentAccountCode,
			Status:      paymentretry.StatusNew,
			LastError:   err.Error(),
			CreatedAt:   time.Now().UTC(),
		}
		if qerr := uc.retries.Create(ctx, retry); qerr != nil {
			return fmt.Errorf("queue payment retry for %s: %w", inv.InvoiceID, qerr)
		}
	}

	return nil
}

// buildInvoiceLines converts Shopify line items into invoice lines. Unit
// price is the discounted per-unit price rounded to 2 decimals; the order's
// shipping total is appended as its own line.
func buildInvoiceLines(order shopify.OrderPayload, salesAccount string) []xero.LineItem {
	var lines []xero.LineItem

	for _, li := range order.LineItems {
		if li.Quantity <= 0 {
			continue
		}

		price, err := decimal.NewFromString(li.Price)
		if err != nil {
			slog.Warn("unparseable line price, skipping line", "reference", order.Name, "price", li.Price)
			continue
		}
		discount := decimal.Zero
		if li.TotalDiscount != "" {
			if d, err := decimal.NewFromString(li.TotalDiscount); err == nil {
				discount = d
			}
		}

		qty := decimal.NewFromInt(li.Quantity)
		unit := price.Mul(qty).Sub(discount).Div(qty).Round(2)

		lines = append(lines, xero.LineItem{
			Description: li.Title,
			Quantity:    float64(li.Quantity),
			UnitAmount:  unit.InexactFloat64(),
			AccountCode: salesAccount,
			TaxType:     xero.TaxTypeNone,
		})
	}

	shipping := decimal.Zero
	for _, sl := range order.ShippingLines {
		if p, err := decimal.NewFromString(sl.Price); err == nil {
			shipping = shipping.Add(p)
		}
	}
	if shipping.IsPositive() {
		lines = append(lines, xero.LineItem{
			Description: "Shipping",
			Quantity:    1,
			UnitAmount:  shipping.Round(2).InexactFloat64(),
			AccountCode: salesAccount,
			TaxType:     xero.TaxTypeNone,
		})
	}

	return lines
}

func contactName(c *shopify.Customer) string {
	if c == nil {
		return fallbackContactName
	}
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return fallbackContactName
	}
	return name
}
