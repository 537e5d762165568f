package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adevcorp-0/xero-shopify/internal/shopify"
	"github.com/adevcorp-0/xero-shopify/internal/xero"
)

// SyncOrderCancelled voids the invoice that mirrors a cancelled order.
// Voiding is terminal, so a redelivered cancellation finds a voided invoice
// and does nothing.
type SyncOrderCancelled struct {
	ledger Ledger
}

func NewSyncOrderCancelled(ledger Ledger) *SyncOrderCancelled {
	return &SyncOrderCancelled{ledger: ledger}
}

func (uc *SyncOrderCancelled) Execute(ctx context.Context, order shopify.OrderPayload) error {
	if order.Name == "" {
		slog.Warn("cancelled order has no name, skipping", "order_id", order.ID)
		return nil
	}

	inv, err := uc.ledger.FindInvoiceByReference(ctx, order.Name)
	if err != nil {
		return fmt.Errorf("find invoice %s: %w", order.Name, err)
	}
	if inv == nil {
		slog.Info("no invoice for cancelled order", "reference", order.Name)
		return nil
	}

	if inv.Status != xero.StatusAuthorised && inv.Status != xero.StatusPaid {
		slog.Info("invoice not voidable, skipping", "reference", order.Name, "status", inv.Status)
		return nil
	}

	if err := uc.ledger.VoidInvoice(ctx, inv.InvoiceID); err != nil {
		return fmt.Errorf("void invoice %s: %w", inv.InvoiceID, err)
	}

	slog.Info("voided invoice for cancelled order", "reference", order.Name, "invoice_id", inv.InvoiceID)
	return nil
}
