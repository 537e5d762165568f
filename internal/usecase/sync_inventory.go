package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/adevcorp-0/xero-shopify/internal/domain/itembill"
	"github.com/adevcorp-0/xero-shopify/internal/infrastructure/postgres"
	"github.com/adevcorp-0/xero-shopify/internal/shopify"
	"github.com/adevcorp-0/xero-shopify/internal/xero"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const (
	maxDescriptionLen = 4000

	// Contact attached to quantity-adjustment bills. Xero requires one and
	// these bills never belong to a real supplier.
	adjustmentContactName = "Shopify Inventory Sync"
)

// SyncInventoryConfig is the slice of sync configuration the inventory
// handler needs.
type SyncInventoryConfig struct {
	SKUPrefix          string
	AssetAccountCode   string
	COGSAccountCode    string
	SalesAccountCode   string
	ReconcileDecreases bool
}

// SyncInventory reconciles an inventory_levels/update event into the ledger:
// first event for a SKU creates a tracked item, later increases post an
// adjustment bill for the difference. The find-then-create-or-adjust
// sequence is the idempotency anchor; the dedup window upstream is only an
// optimization.
type SyncInventory struct {
	commerce     Commerce
	ledger       Ledger
	expectations ExpectationChecker
	bills        ItemBillStore
	txManager    postgres.Transactor
	cfg          SyncInventoryConfig
	sanitizer    *bluemonday.Policy
}

func NewSyncInventory(
	commerce Commerce,
	ledger Ledger,
	expectations ExpectationChecker,
	bills ItemBillStore,
	txManager postgres.Transactor,
	cfg SyncInventoryConfig,
) *SyncInventory {
	return &SyncInventory{
		commerce:     commerce,
		ledger:       ledger,
		expectations: expectations,
		bills:        bills,
		txManager:    txManager,
		cfg:          cfg,
		sanitizer:    bluemonday.StrictPolicy(),
	}
}

func (uc *SyncInventory) Execute(ctx context.Context, p shopify.InventoryLevelPayload) error {
	variant, err := uc.commerce.ResolveVariant(ctx, p.InventoryItemID)
	if errors.Is(err, shopify.ErrNotFound) {
		slog.Warn("no variant for inventory item, skipping", "inventory_item_id", p.InventoryItemID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve variant: %w", err)
	}
	if variant.SKU == "" {
		slog.Warn("variant has no SKU, skipping", "inventory_item_id", p.InventoryItemID)
		return nil
	}

	reason, matched, err := uc.expectations.CheckAndConsume(ctx, variant.SKU, p.LocationID, p.Available)
	if err != nil {
		return fmt.Errorf("check expectation: %w", err)
	}
	if matched {
		slog.Info("inventory change was self-caused, skipping sync",
			"sku", variant.SKU, "location_id", p.LocationID, "available", p.Available, "reason", reason)
		return nil
	}

	code := uc.cfg.SKUPrefix + "-" + variant.SKU

	item, err := uc.ledger.FindItemByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("find item %s: %w", code, err)
	}

	if item == nil {
		return uc.createItem(ctx, variant, code, p)
	}

	return uc.adjustItem(ctx, variant, item, code, p)
}

func (uc *SyncInventory) createItem(ctx context.Context, variant *shopify.Variant, code string, p shopify.InventoryLevelPayload) error {
	name := variant.Title
	description := "Imported from Shopify"

	productID := shopify.ExtractIDFromGID(variant.Product.ID)
	product, err := uc.commerce.ResolveProduct(ctx, productID)
	if err != nil {
		slog.Warn("product lookup failed, using variant fields", "product_id", productID, "error", err)
	} else {
		if product.Title != "" {
			name = product.Title
		}
		if product.BodyHTML != "" {
			description = product.BodyHTML
		}
	}
	if name == "" {
		name = "Unnamed"
	}
	description = truncate(uc.sanitizer.Sanitize(description), maxDescriptionLen)

	salesPrice, _ := strconv.ParseFloat(variant.Price, 64)
	purchaseCost := uc.unitCost(ctx, variant, p.InventoryItemID)

	created, err := uc.ledger.CreateItem(ctx, &xero.Item{
		Code:                      code,
		Name:                      name,
		Description:               description,
		PurchaseDescription:       "Imported: " + name,
		QuantityOnHand:            float64(p.Available),
		IsTrackedAsInventory:      true,
		InventoryAssetAccountCode: uc.cfg.AssetAccountCode,
		PurchaseDetails: &xero.ItemDetails{
			UnitPrice:       purchaseCost,
			COGSAccountCode: uc.cfg.COGSAccountCode,
			TaxType:         xero.TaxTypeNone,
		},
		SalesDetails: &xero.ItemDetails{
			UnitPrice:   salesPrice,
			AccountCode: uc.cfg.SalesAccountCode,
			TaxType:     xero.TaxTypeNone,
		},
		IsSold:      true,
		IsPurchased: true,
	})
	if err != nil {
		return fmt.Errorf("create item %s: %w", code, err)
	}

	slog.Info("created ledger item", "code", created.Code, "quantity", p.Available)
	return nil
}

func (uc *SyncInventory) adjustItem(ctx context.Context, variant *shopify.Variant, item *xero.Item, code string, p shopify.InventoryLevelPayload) error {
	ledgerQty, err := uc.ledger.GetItemQuantity(ctx, item.ItemID)
	if err != nil {
		return fmt.Errorf("get item quantity %s: %w", code, err)
	}

	diff := p.Available - int64(ledgerQty)
	switch {
	case diff > 0:
		return uc.postAdjustmentBill(ctx, variant, code, diff, p)
	case diff < 0:
		if !uc.cfg.ReconcileDecreases {
			slog.Info("inventory decrease ignored (reconcile_decreases off)",
				"sku", variant.SKU, "available", p.Available, "ledger_quantity", ledgerQty)
			return nil
		}
		return uc.reconcileDecrease(ctx, variant, code, int64(ledgerQty), p)
	default:
		slog.Info("inventory already in sync", "sku", variant.SKU, "quantity", p.Available)
		return nil
	}
}

func (uc *SyncInventory) postAdjustmentBill(ctx context.Context, variant *shopify.Variant, code string, qty int64, p shopify.InventoryLevelPayload) error {
	cost := uc.unitCost(ctx, variant, p.InventoryItemID)

	reference := fmt.Sprintf("Shopify stock adjust %s %s", variant.SKU, p.UpdatedAt)
	bill, err := uc.ledger.CreateInvoice(ctx, &xero.Invoice{
		Type:    xero.TypeAccPay,
		Contact: xero.Contact{Name: adjustmentContactName},
		Date:    time.Now().Format("2006-01-02"),
		Status:  xero.StatusAuthorised,
		LineItems: []xero.LineItem{
			{
				Description: "Stock adjustment " + variant.SKU,
				Quantity:    float64(qty),
				UnitAmount:  cost,
				ItemCode:    code,
				TaxType:     xero.TaxTypeNone,
			},
		},
		Reference: reference,
	})
	if err != nil {
		return fmt.Errorf("create adjustment bill for %s: %w", code, err)
	}

	err = uc.bills.Save(ctx, &itembill.Record{
		ID:        uuid.New().String(),
		ItemCode:  code,
		InvoiceID: bill.InvoiceID,
		Quantity:  qty,
		Reference: reference,
		SyncedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("record adjustment bill: %w", err)
	}

	slog.Info("posted adjustment bill", "code", code, "quantity", qty, "invoice_id", bill.InvoiceID)
	return nil
}

// reconcileDecrease voids every recorded adjustment bill for the item and,
// if the observed quantity still exceeds the pre-adjustment baseline, posts
// one corrected bill for the remainder.
func (uc *SyncInventory) reconcileDecrease(ctx context.Context, variant *shopify.Variant, code string, ledgerQty int64, p shopify.InventoryLevelPayload) error {
	records, err := uc.bills.ListByItemCode(ctx, code)
	if err != nil {
		return fmt.Errorf("list bills for %s: %w", code, err)
	}

	var adjusted int64
	for _, rec := range records {
		if err := uc.ledger.VoidInvoice(ctx, rec.InvoiceID); err != nil {
			return fmt.Errorf("void bill %s: %w", rec.InvoiceID, err)
		}
		adjusted += rec.Quantity
	}

	err = uc.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, rec := range records {
			if err := uc.bills.DeleteByInvoiceID(txCtx, rec.InvoiceID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("drop bill records for %s: %w", code, err)
	}

	baseline := ledgerQty - adjusted
	if corrected := p.Available - baseline; corrected > 0 {
		return uc.postAdjustmentBill(ctx, variant, code, corrected, p)
	}

	slog.Info("inventory decrease reconciled by voiding bills",
		"sku", variant.SKU, "voided_bills", len(records), "available", p.Available)
	return nil
}

// unitCost resolves the variant's purchase cost, falling back to 0 when the
// storefront has none recorded.
func (uc *SyncInventory) unitCost(ctx context.Context, variant *shopify.Variant, inventoryItemID int64) float64 {
	cost, err := uc.commerce.ResolveUnitCost(ctx, variant.Product.ID, inventoryItemID)
	if err != nil {
		slog.Warn("unit cost lookup failed, defaulting to 0", "sku", variant.SKU, "error", err)
		return 0
	}
	return cost
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
