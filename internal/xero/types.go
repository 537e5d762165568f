package xero

// Document types and statuses used by the sync. ACCPAY invoices are the
// quantity-adjustment bills; ACCREC invoices mirror paid Shopify orders.
const (
	TypeAccRec       = "ACCREC"
	TypeAccPay       = "ACCPAY"
	TypeAccRecCredit = "ACCRECCREDIT"

	StatusAuthorised = "AUTHORISED"
	StatusPaid       = "PAID"
	StatusVoided     = "VOIDED"
	StatusDeleted    = "DELETED"

	TaxTypeNone = "NONE"
)

type Contact struct {
	ContactID string `json:"ContactID,omitempty"`
	Name      string `json:"Name,omitempty"`
}

type ItemDetails struct {
	UnitPrice       float64 `json:"UnitPrice"`
	AccountCode     string  `json:"AccountCode,omitempty"`
	COGSAccountCode string  `json:"COGSAccountCode,omitempty"`
	TaxType         string  `json:"TaxType,omitempty"`
}

type Item struct {
	ItemID                    string       `json:"ItemID,omitempty"`
	Code                      string       `json:"Code"`
	Name                      string       `json:"Name"`
	Description               string       `json:"Description,omitempty"`
	PurchaseDescription       string       `json:"PurchaseDescription,omitempty"`
	QuantityOnHand            float64      `json:"QuantityOnHand,omitempty"`
	IsTrackedAsInventory      bool         `json:"IsTrackedAsInventory"`
	InventoryAssetAccountCode string       `json:"InventoryAssetAccountCode,omitempty"`
	PurchaseDetails           *ItemDetails `json:"PurchaseDetails,omitempty"`
	SalesDetails              *ItemDetails `json:"SalesDetails,omitempty"`
	IsSold                    bool         `json:"IsSold"`
	IsPurchased               bool         `json:"IsPurchased"`
}

type LineItem struct {
	Description string  `json:"Description"`
	Quantity    float64 `json:"Quantity"`
	UnitAmount  float64 `json:"UnitAmount"`
	AccountCode string  `json:"AccountCode,omitempty"`
	ItemCode    string  `json:"ItemCode,omitempty"`
	TaxType     string  `json:"TaxType,omitempty"`
}

type Invoice struct {
	InvoiceID string     `json:"InvoiceID,omitempty"`
	Type      string     `json:"Type,omitempty"`
	Contact   Contact    `json:"Contact,omitempty"`
	Date      string     `json:"Date,omitempty"`
	DueDate   string     `json:"DueDate,omitempty"`
	LineItems []LineItem `json:"LineItems,omitempty"`
	Status    string     `json:"Status,omitempty"`
	Reference string     `json:"Reference,omitempty"`
	Total     float64    `json:"Total,omitempty"`
	AmountDue float64    `json:"AmountDue,omitempty"`
}

type CreditNote struct {
	CreditNoteID string     `json:"CreditNoteID,omitempty"`
	Type         string     `json:"Type,omitempty"`
	Contact      Contact    `json:"Contact,omitempty"`
	Date         string     `json:"Date,omitempty"`
	LineItems    []LineItem `json:"LineItems,omitempty"`
	Status       string     `json:"Status,omitempty"`
	Reference    string     `json:"Reference,omitempty"`
	Total        float64    `json:"Total,omitempty"`
}

type Payment struct {
	PaymentID string  `json:"PaymentID,omitempty"`
	Invoice   Invoice `json:"Invoice"`
	Account   Account `json:"Account"`
	Date      string  `json:"Date,omitempty"`
	Amount    float64 `json:"Amount"`
}

type Account struct {
	Code string `json:"Code"`
}
