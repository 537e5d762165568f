package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/adevcorp-0/xero-shopify/internal/shopify"
	"github.com/adevcorp-0/xero-shopify/internal/xero"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inventoryConfig(reconcile bool) SyncInventoryConfig {
	return SyncInventoryConfig{
		SKUPrefix:          "STX",
		AssetAccountCode:   "1400",
		COGSAccountCode:    "5000",
		SalesAccountCode:   "4000",
		ReconcileDecreases: reconcile,
	}
}

func testVariant() *shopify.Variant {
	return &shopify.Variant{
		ID:    "gid://shopify/ProductVariant/111",
		SKU:   "ABC123",
		Title: "Blue Widget",
		Price: "19.99",
		Product: shopify.Product{
			ID:    "gid://shopify/Product/222",
			Title: "Widget",
		},
	}
}

func TestSyncInventoryCreatesItem(t *testing.T) {
	commerce := newFakeCommerce()
	commerce.variants[123] = testVariant()
	commerce.products["222"] = &shopify.Product{
		ID:       "222",
		Title:    "Widget Deluxe",
		BodyHTML: "<p>A <b>fine</b> widget</p>",
	}
	commerce.unitCosts[123] = 7.5

	ledger := newFakeLedger()
	bills := &fakeBillStore{}
	expectations := &fakeExpectations{}

	uc := NewSyncInventory(commerce, ledger, expectations, bills, fakeTxManager{}, inventoryConfig(false))

	err := uc.Execute(context.Background(), shopify.InventoryLevelPayload{
		InventoryItemID: 123, LocationID: 1, Available: 10, UpdatedAt: "2024-05-01T10:00:00Z",
	})
	require.NoError(t, err)

	require.Len(t, ledger.createdItems, 1)
	item := ledger.createdItems[0]
	assert.Equal(t, "STX-ABC123", item.Code)
	assert.Equal(t, "Widget Deluxe", item.Name)
	assert.Equal(t, "A fine widget", item.Description)
	assert.Equal(t, float64(10), item.QuantityOnHand)
	assert.True(t, item.IsTrackedAsInventory)
	assert.Equal(t, "1400", item.InventoryAssetAccountCode)
	require.NotNil(t, item.PurchaseDetails)
	assert.Equal(t, 7.5, item.PurchaseDetails.UnitPrice)
	assert.Equal(t, "5000", item.PurchaseDetails.COGSAccountCode)
	require.NotNil(t, item.SalesDetails)
	assert.Equal(t, 19.99, item.SalesDetails.UnitPrice)
	assert.Equal(t, "4000", item.SalesDetails.AccountCode)

	assert.Empty(t, ledger.createdInvoices, "item creation must not post a bill")
}

func TestSyncInventoryDescriptionTruncated(t *testing.T) {
	commerce := newFakeCommerce()
	commerce.variants[123] = testVariant()
	commerce.products["222"] = &shopify.Product{
		ID:       "222",
		Title:    "Widget",
		BodyHTML: strings.Repeat("x", 5000),
	}

	ledger := newFakeLedger()
	uc := NewSyncInventory(commerce, ledger, &fakeExpectations{}, &fakeBillStore{}, fakeTxManager{}, inventoryConfig(false))

	err := uc.Execute(context.Background(), shopify.InventoryLevelPayload{InventoryItemID: 123, Available: 1})
	require.NoError(t, err)

	require.Len(t, ledger.createdItems, 1)
	assert.Len(t, ledger.createdItems[0].Description, 4000)
}

func TestSyncInventoryIncreasePostsBill(t *testing.T) {
	commerce := newFakeCommerce()
	commerce.variants[123] = testVariant()
	commerce.unitCosts[123] = 4

	ledger := newFakeLedger()
	ledger.items["STX-ABC123"] = &xero.Item{ItemID: "item-9", Code: "STX-ABC123"}
	ledger.itemQty["item-9"] = 10

	bills := &fakeBillStore{}
	uc := NewSyncInventory(commerce, ledger, &fakeExpectations{}, bills, fakeTxManager{}, inventoryConfig(false))

	err := uc.Execute(context.Background(), shopify.InventoryLevelPayload{
		InventoryItemID: 123, LocationID: 1, Available: 15, UpdatedAt: "2024-05-01T10:00:00Z",
	})
	require.NoError(t, err)

	require.Len(t, ledger.createdInvoices, 1)
	bill := ledger.createdInvoices[0]
	assert.Equal(t, xero.TypeAccPay, bill.Type)
	assert.Equal(t, "Shopify Inventory Sync", bill.Contact.Name)
	require.Len(t, bill.LineItems, 1)
	assert.Equal(t, float64(5), bill.LineItems[0].Quantity)
	assert.Equal(t, float64(4), bill.LineItems[0].UnitAmount)
	assert.Equal(t, "STX-ABC123", bill.LineItems[0].ItemCode)

	require.Len(t, bills.records, 1)
	assert.Equal(t, bill.InvoiceID, bills.records[0].InvoiceID)
	assert.Equal(t, int64(5), bills.records[0].Quantity)
}

func TestSyncInventoryEqualQuantityNoop(t *testing.T) {
	commerce := newFakeCommerce()
	commerce.variants[123] = testVariant()

	ledger := newFakeLedger()
	ledger.items["STX-ABC123"] = &xero.Item{ItemID: "item-9", Code: "STX-ABC123"}
	ledger.itemQty["item-9"] = 15

	uc := NewSyncInventory(commerce, ledger, &fakeExpectations{}, &fakeBillStore{}, fakeTxManager{}, inventoryConfig(false))

	err := uc.Execute(context.Background(), shopify.InventoryLevelPayload{InventoryItemID: 123, Available: 15})
	require.NoError(t, err)
	assert.Empty(t, ledger.createdInvoices)
	assert.Empty(t, ledger.createdItems)
}

func TestSyncInventoryDecreaseIgnoredByDefault(t *testing.T) {
	commerce := newFakeCommerce()
	commerce.variants[123] = testVariant()

	ledger := newFakeLedger()
	ledger.items["STX-ABC123"] = &xero.Item{ItemID: "item-9", Code: "STX-ABC123"}
	ledger.itemQty["item-9"] = 15

	uc := NewSyncInventory(commerce, ledger, &fakeExpectations{}, &fakeBillStore{}, fakeTxManager{}, inventoryConfig(false))

	err := uc.Execute(context.Background(), shopify.InventoryLevelPayload{InventoryItemID: 123, Available: 8})
	require.NoError(t, err)
	assert.Empty(t, ledger.createdInvoices)
	assert.Empty(t, ledger.voided)
}

func TestSyncInventoryDecreaseReconciled(t *testing.T) {
	commerce := newFakeCommerce()
	commerce.variants[123] = testVariant()
	commerce.unitCosts[123] = 4

	ledger := newFakeLedger()
	ledger.items["STX-ABC123"] = &xero.Item{ItemID: "item-9", Code: "STX-ABC123"}
	ledger.itemQty["item-9"] = 20

	bills := &fakeBillStore{}
	uc := NewSyncInventory(commerce, ledger, &fakeExpectations{}, bills, fakeTxManager{}, inventoryConfig(true))

	// Two earlier increases brought the item from 10 to 20.
	require.NoError(t, bills.Save(context.Background(), billRecord("STX-ABC123", "bill-1", 6)))
	require.NoError(t, bills.Save(context.Background(), billRecord("STX-ABC123", "bill-2", 4)))

	// Observed 14: baseline is 10, so both bills are voided and one
	// corrected bill for 4 replaces them.
	err := uc.Execute(context.Background(), shopify.InventoryLevelPayload{
		InventoryItemID: 123, Available: 14, UpdatedAt: "2024-05-02T10:00:00Z",
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"bill-1", "bill-2"}, ledger.voided)
	require.Len(t, ledger.createdInvoices, 1)
	assert.Equal(t, float64(4), ledger.createdInvoices[0].LineItems[0].Quantity)

	require.Len(t, bills.records, 1)
	assert.Equal(t, int64(4), bills.records[0].Quantity)
}

func TestSyncInventoryExpectationMatchSkips(t *testing.T) {
	commerce := newFakeCommerce()
	commerce.variants[123] = testVariant()

	ledger := newFakeLedger()
	expectations := &fakeExpectations{matched: true, reason: "order #1001 synced"}

	uc := NewSyncInventory(commerce, ledger, expectations, &fakeBillStore{}, fakeTxManager{}, inventoryConfig(false))

	err := uc.Execute(context.Background(), shopify.InventoryLevelPayload{InventoryItemID: 123, LocationID: 1, Available: 9})
	require.NoError(t, err)

	assert.Equal(t, 1, expectations.calls)
	assert.Empty(t, ledger.createdItems)
	assert.Empty(t, ledger.createdInvoices)
}

func TestSyncInventoryUnknownItemSkips(t *testing.T) {
	commerce := newFakeCommerce()
	ledger := newFakeLedger()

	uc := NewSyncInventory(commerce, ledger, &fakeExpectations{}, &fakeBillStore{}, fakeTxManager{}, inventoryConfig(false))

	err := uc.Execute(context.Background(), shopify.InventoryLevelPayload{InventoryItemID: 999, Available: 5})
	require.NoError(t, err)
	assert.Empty(t, ledger.createdItems)
}

func TestSyncInventoryEmptySKUSkips(t *testing.T) {
	commerce := newFakeCommerce()
	v := testVariant()
	v.SKU = ""
	commerce.variants[123] = v

	ledger := newFakeLedger()
	expectations := &fakeExpectations{}
	uc := NewSyncInventory(commerce, ledger, expectations, &fakeBillStore{}, fakeTxManager{}, inventoryConfig(false))

	err := uc.Execute(context.Background(), shopify.InventoryLevelPayload{InventoryItemID: 123, Available: 5})
	require.NoError(t, err)
	assert.Zero(t, expectations.calls)
	assert.Empty(t, ledger.createdItems)
}
