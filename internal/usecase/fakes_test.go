package usecase

import (
	"context"
	"fmt"

	"github.com/adevcorp-0/xero-shopify/internal/domain/itembill"
	"github.com/adevcorp-0/xero-shopify/internal/domain/paymentretry"
	"github.com/adevcorp-0/xero-shopify/internal/shopify"
	"github.com/adevcorp-0/xero-shopify/internal/xero"
)

type fakeCommerce struct {
	variants   map[int64]*shopify.Variant
	products   map[string]*shopify.Product
	unitCosts  map[int64]float64
	orderNames map[int64]string
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{
		variants:   map[int64]*shopify.Variant{},
		products:   map[string]*shopify.Product{},
		unitCosts:  map[int64]float64{},
		orderNames: map[int64]string{},
	}
}

func (f *fakeCommerce) ResolveVariant(_ context.Context, inventoryItemID int64) (*shopify.Variant, error) {
	v, ok := f.variants[inventoryItemID]
	if !ok {
		return nil, shopify.ErrNotFound
	}
	return v, nil
}

func (f *fakeCommerce) ResolveProduct(_ context.Context, productID string) (*shopify.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, shopify.ErrNotFound
	}
	return p, nil
}

func (f *fakeCommerce) ResolveUnitCost(_ context.Context, _ string, inventoryItemID int64) (float64, error) {
	return f.unitCosts[inventoryItemID], nil
}

func (f *fakeCommerce) ResolveOrderReference(_ context.Context, orderID int64) (string, error) {
	name, ok := f.orderNames[orderID]
	if !ok {
		return "", shopify.ErrNotFound
	}
	return name, nil
}

// fakeLedger tracks documents in memory. CreateInvoice assigns a sequential
// id and computes the total from the lines, like the real API response does.
type fakeLedger struct {
	items    map[string]*xero.Item
	itemQty  map[string]float64
	invoices map[string]*xero.Invoice
	contacts map[string]bool

	createdItems    []*xero.Item
	createdInvoices []*xero.Invoice
	creditNotes     []*xero.CreditNote
	voided          []string
	payments        []fakePayment

	findInvoiceErr error
	paymentErr     error
}

type fakePayment struct {
	invoiceID   string
	amount      float64
	accountCode string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		items:    map[string]*xero.Item{},
		itemQty:  map[string]float64{},
		invoices: map[string]*xero.Invoice{},
		contacts: map[string]bool{},
	}
}

func (f *fakeLedger) FindItemByCode(_ context.Context, code string) (*xero.Item, error) {
	return f.items[code], nil
}

func (f *fakeLedger) CreateItem(_ context.Context, item *xero.Item) (*xero.Item, error) {
	created := *item
	created.ItemID = fmt.Sprintf("item-%d", len(f.createdItems)+1)
	f.items[item.Code] = &created
	f.itemQty[created.ItemID] = item.QuantityOnHand
	f.createdItems = append(f.createdItems, &created)
	return &created, nil
}

func (f *fakeLedger) GetItemQuantity(_ context.Context, itemID string) (float64, error) {
	return f.itemQty[itemID], nil
}

func (f *fakeLedger) FindInvoiceByReference(_ context.Context, reference string) (*xero.Invoice, error) {
	if f.findInvoiceErr != nil {
		return nil, f.findInvoiceErr
	}
	return f.invoices[reference], nil
}

func (f *fakeLedger) CreateInvoice(_ context.Context, inv *xero.Invoice) (*xero.Invoice, error) {
	created := *inv
	created.InvoiceID = fmt.Sprintf("inv-%d", len(f.createdInvoices)+1)
	for _, li := range inv.LineItems {
		created.Total += li.Quantity * li.UnitAmount
	}
	if created.Reference != "" {
		f.invoices[created.Reference] = &created
	}
	f.createdInvoices = append(f.createdInvoices, &created)
	return &created, nil
}

func (f *fakeLedger) VoidInvoice(_ context.Context, invoiceID string) error {
	f.voided = append(f.voided, invoiceID)
	return nil
}

func (f *fakeLedger) CreatePayment(_ context.Context, invoiceID string, amount float64, accountCode string) error {
	if f.paymentErr != nil {
		return f.paymentErr
	}
	f.payments = append(f.payments, fakePayment{invoiceID: invoiceID, amount: amount, accountCode: accountCode})
	return nil
}

func (f *fakeLedger) CreateCreditNote(_ context.Context, cn *xero.CreditNote) (*xero.CreditNote, error) {
	created := *cn
	created.CreditNoteID = fmt.Sprintf("cn-%d", len(f.creditNotes)+1)
	f.creditNotes = append(f.creditNotes, &created)
	return &created, nil
}

func (f *fakeLedger) ContactExists(_ context.Context, contactID string) (bool, error) {
	return f.contacts[contactID], nil
}

type fakeExpectations struct {
	reason  string
	matched bool
	calls   int
}

func (f *fakeExpectations) CheckAndConsume(_ context.Context, _ string, _ int64, _ int64) (string, bool, error) {
	f.calls++
	return f.reason, f.matched, nil
}

type fakeBillStore struct {
	records []*itembill.Record
}

func (f *fakeBillStore) Save(_ context.Context, rec *itembill.Record) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeBillStore) ListByItemCode(_ context.Context, itemCode string) ([]*itembill.Record, error) {
	var out []*itembill.Record
	for _, rec := range f.records {
		if rec.ItemCode == itemCode {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeBillStore) DeleteByInvoiceID(_ context.Context, invoiceID string) error {
	kept := f.records[:0]
	for _, rec := range f.records {
		if rec.InvoiceID != invoiceID {
			kept = append(kept, rec)
		}
	}
	f.records = kept
	return nil
}

func billRecord(itemCode, invoiceID string, qty int64) *itembill.Record {
	return &itembill.Record{
		ID:        invoiceID + "-rec",
		ItemCode:  itemCode,
		InvoiceID: invoiceID,
		Quantity:  qty,
	}
}

type fakeRetryQueue struct {
	created   []*paymentretry.Retry
	createErr error
}

func (f *fakeRetryQueue) Create(_ context.Context, p *paymentretry.Retry) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, p)
	return nil
}

// fakeTxManager runs the function without a real transaction.
type fakeTxManager struct{}

func (fakeTxManager) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	return tFunc(ctx)
}
