package usecase

import (
	"context"
	"testing"

	"github.com/adevcorp-0/xero-shopify/internal/shopify"
	"github.com/adevcorp-0/xero-shopify/internal/xero"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRefund() shopify.RefundPayload {
	return shopify.RefundPayload{
		ID:      900,
		OrderID: 42,
		RefundLineItems: []shopify.RefundLineItem{
			{Quantity: 1, LineItem: shopify.RefundLineInfo{Title: "Blue Widget", Price: "19.99"}},
		},
	}
}

func TestSyncRefundCreatesCreditNote(t *testing.T) {
	commerce := newFakeCommerce()
	commerce.orderNames[42] = "#1001"

	ledger := newFakeLedger()
	ledger.invoices["#1001"] = &xero.Invoice{
		InvoiceID: "inv-1",
		Reference: "#1001",
		Contact:   xero.Contact{ContactID: "c-1", Name: "Jane Doe"},
	}
	ledger.contacts["c-1"] = true

	uc := NewSyncRefund(commerce, ledger, SyncRefundConfig{SalesAccountCode: "4000"})
	err := uc.Execute(context.Background(), testRefund())
	require.NoError(t, err)

	require.Len(t, ledger.creditNotes, 1)
	cn := ledger.creditNotes[0]
	assert.Equal(t, xero.TypeAccRecCredit, cn.Type)
	assert.Equal(t, xero.StatusAuthorised, cn.Status)
	assert.Equal(t, "#1001", cn.Reference)
	assert.Equal(t, "c-1", cn.Contact.ContactID)
	require.Len(t, cn.LineItems, 1)
	assert.Equal(t, "Blue Widget", cn.LineItems[0].Description)
	assert.Equal(t, 19.99, cn.LineItems[0].UnitAmount)
	assert.Equal(t, "4000", cn.LineItems[0].AccountCode)
}

func TestSyncRefundMissingContactFallsBackToName(t *testing.T) {
	commerce := newFakeCommerce()
	commerce.orderNames[42] = "#1001"

	ledger := newFakeLedger()
	ledger.invoices["#1001"] = &xero.Invoice{
		InvoiceID: "inv-1",
		Reference: "#1001",
		Contact:   xero.Contact{ContactID: "c-gone", Name: "Jane Doe"},
	}

	uc := NewSyncRefund(commerce, ledger, SyncRefundConfig{SalesAccountCode: "4000"})
	require.NoError(t, uc.Execute(context.Background(), testRefund()))

	require.Len(t, ledger.creditNotes, 1)
	assert.Empty(t, ledger.creditNotes[0].Contact.ContactID)
	assert.Equal(t, "Jane Doe", ledger.creditNotes[0].Contact.Name)
}

func TestSyncRefundUnknownOrderSkips(t *testing.T) {
	commerce := newFakeCommerce()
	ledger := newFakeLedger()

	uc := NewSyncRefund(commerce, ledger, SyncRefundConfig{SalesAccountCode: "4000"})
	require.NoError(t, uc.Execute(context.Background(), testRefund()))
	assert.Empty(t, ledger.creditNotes)
}

func TestSyncRefundNoInvoiceSkips(t *testing.T) {
	commerce := newFakeCommerce()
	commerce.orderNames[42] = "#1001"
	ledger := newFakeLedger()

	uc := NewSyncRefund(commerce, ledger, SyncRefundConfig{SalesAccountCode: "4000"})
	require.NoError(t, uc.Execute(context.Background(), testRefund()))
	assert.Empty(t, ledger.creditNotes)
}

func TestSyncRefundNoLinesSkips(t *testing.T) {
	commerce := newFakeCommerce()
	commerce.orderNames[42] = "#1001"

	ledger := newFakeLedger()
	ledger.invoices["#1001"] = &xero.Invoice{InvoiceID: "inv-1", Reference: "#1001"}

	uc := NewSyncRefund(commerce, ledger, SyncRefundConfig{SalesAccountCode: "4000"})

	refund := testRefund()
	refund.RefundLineItems = nil
	require.NoError(t, uc.Execute(context.Background(), refund))
	assert.Empty(t, ledger.creditNotes)
}
