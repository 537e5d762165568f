package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adevcorp-0/xero-shopify/internal/shopify"
	"github.com/adevcorp-0/xero-shopify/internal/xero"

	"github.com/shopspring/decimal"
)

type SyncRefundConfig struct {
	SalesAccountCode string
}

// SyncRefund mirrors a Shopify refund as an authorised accounts-receivable
// credit note against the original invoice. Refund payloads reference orders
// by numeric id only, so the order name is resolved through the commerce API
// first.
type SyncRefund struct {
	commerce Commerce
	ledger   Ledger
	cfg      SyncRefundConfig
}

func NewSyncRefund(commerce Commerce, ledger Ledger, cfg SyncRefundConfig) *SyncRefund {
	return &SyncRefund{commerce: commerce, ledger: ledger, cfg: cfg}
}

func (uc *SyncRefund) Execute(ctx context.Context, refund shopify.RefundPayload) error {
	reference, err := uc.commerce.ResolveOrderReference(ctx, refund.OrderID)
	if errors.Is(err, shopify.ErrNotFound) {
		slog.Warn("refund references unknown order, skipping", "order_id", refund.OrderID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve order %d: %w", refund.OrderID, err)
	}

	inv, err := uc.ledger.FindInvoiceByReference(ctx, reference)
	if err != nil {
		return fmt.Errorf("find invoice %s: %w", reference, err)
	}
	if inv == nil {
		slog.Warn("no invoice for refunded order, skipping", "reference", reference)
		return nil
	}

	lines := uc.buildCreditLines(refund)
	if len(lines) == 0 {
		slog.Warn("refund has no line items, skipping", "reference", reference)
		return nil
	}

	cn, err := uc.ledger.CreateCreditNote(ctx, &xero.CreditNote{
		Type:      xero.TypeAccRecCredit,
		Contact:   uc.resolveContact(ctx, inv),
		Date:      time.Now().Format("2006-01-02"),
		LineItems: lines,
		Status:    xero.StatusAuthorised,
		Reference: reference,
	})
	if err != nil {
		return fmt.Errorf("create credit note for %s: %w", reference, err)
	}

	slog.Info("created credit note", "reference", reference, "credit_note_id", cn.CreditNoteID)
	return nil
}

func (uc *SyncRefund) buildCreditLines(refund shopify.RefundPayload) []xero.LineItem {
	var lines []xero.LineItem
	for _, rli := range refund.RefundLineItems {
		if rli.Quantity <= 0 {
			continue
		}

		price, err := decimal.NewFromString(rli.LineItem.Price)
		if err != nil {
			slog.Warn("unparseable refund line price, skipping line", "price", rli.LineItem.Price)
			continue
		}

		lines = append(lines, xero.LineItem{
			Description: rli.LineItem.Title,
			Quantity:    float64(rli.Quantity),
			UnitAmount:  price.Round(2).InexactFloat64(),
			AccountCode: uc.cfg.SalesAccountCode,
			TaxType:     xero.TaxTypeNone,
		})
	}
	return lines
}

// resolveContact reuses the original invoice's contact when it still exists
// in the ledger, falling back to the contact name.
func (uc *SyncRefund) resolveContact(ctx context.Context, inv *xero.Invoice) xero.Contact {
	if inv.Contact.ContactID != "" {
		exists, err := uc.ledger.ContactExists(ctx, inv.Contact.ContactID)
		if err != nil {
			slog.Warn("contact lookup failed, falling back to name", "contact_id", inv.Contact.ContactID, "error", err)
		} else if exists {
			return xero.Contact{ContactID: inv.Contact.ContactID}
		}
	}

	name := inv.Contact.Name
	if name == "" {
		name = fallbackContactName
	}
	return xero.Contact{Name: name}
}
