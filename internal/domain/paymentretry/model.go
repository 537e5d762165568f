package paymentretry

import (
	"time"
)

// Statuses follow the claim lifecycle: rows are created as StatusNew,
// claimed as StatusProcessing by the sweeper, and either finished as
// StatusDone or put back to StatusNew for another attempt.
const (
	StatusNew        = "new"
	StatusProcessing = "processing"
	StatusDone       = "done"
)

// Retry is a payment that could not be recorded against an invoice at sync
// time. The invoice already exists in Xero; only the payment is outstanding.
type Retry struct {
	ID          string    `json:"id"`
	InvoiceID   string    `json:"invoice_id"`
	Amount      float64   `json:"amount"`
	AccountCode string    `json:"account_code"`
	Status      string    `json:"status"`
	Attempts    int       `json:"attempts"`
	LastError   string    `json:"last_error"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
