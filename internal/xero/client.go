package xero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const baseURL = "https://api.xero.com/api.xro/2.0"

// CredentialSource yields a valid access token and tenant id, refreshing as
// needed. Satisfied by *Auth.
type CredentialSource interface {
	ValidCredentials(ctx context.Context) (accessToken, tenantID string, err error)
}

// Client talks to the Xero accounting API. Credentials are resolved per
// call so a refresh mid-process is picked up transparently.
type Client struct {
	creds      CredentialSource
	httpClient *http.Client
}

func NewClient(creds CredentialSource) *Client {
	return &Client{
		creds: creds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FindItemByCode returns the item with the given code, or nil when absent.
func (c *Client) FindItemByCode(ctx context.Context, code string) (*Item, error) {
	q := url.Values{}
	q.Set("where", fmt.Sprintf("Code==%q", code))

	var out struct {
		Items []Item `json:"Items"`
	}
	if err := c.request(ctx, http.MethodGet, "/Items?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	return &out.Items[0], nil
}

func (c *Client) CreateItem(ctx context.Context, item *Item) (*Item, error) {
	body := map[string]any{"Items": []*Item{item}}

	var out struct {
		Items []Item `json:"Items"`
	}
	if err := c.request(ctx, http.MethodPost, "/Items", body, &out); err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("xero: create item returned no items")
	}

	return &out.Items[0], nil
}

// GetItemQuantity reads the current on-hand quantity of an item.
func (c *Client) GetItemQuantity(ctx context.Context, itemID string) (float64, error) {
	var out struct {
		Items []Item `json:"Items"`
	}
	if err := c.request(ctx, http.MethodGet, "/Items/"+itemID, nil, &out); err != nil {
		return 0, err
	}
	if len(out.Items) == 0 {
		return 0, &APIError{StatusCode: http.StatusNotFound, Body: "item " + itemID}
	}

	return out.Items[0].QuantityOnHand, nil
}

// FindInvoiceByReference returns the first non-deleted ACCREC invoice whose
// reference matches, or nil when absent. The reference is the idempotency
// key for order syncs.
func (c *Client) FindInvoiceByReference(ctx context.Context, reference string) (*Invoice, error) {
	q := url.Values{}
	q.Set("where", fmt.Sprintf("Reference==%q&&Type==%q", reference, TypeAccRec))

	var out struct {
		Invoices []Invoice `json:"Invoices"`
	}
	if err := c.request(ctx, http.MethodGet, "/Invoices?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}

	for i := range out.Invoices {
		if out.Invoices[i].Status != StatusDeleted {
			return &out.Invoices[i], nil
		}
	}

	return nil, nil
}

func (c *Client) CreateInvoice(ctx context.Context, inv *Invoice) (*Invoice, error) {
	body := map[string]any{"Invoices": []*Invoice{inv}}

	var out struct {
		Invoices []Invoice `json:"Invoices"`
	}
	if err := c.request(ctx, http.MethodPost, "/Invoices", body, &out); err != nil {
		return nil, err
	}
	if len(out.Invoices) == 0 {
		return nil, fmt.Errorf("xero: create invoice returned no invoices")
	}

	return &out.Invoices[0], nil
}

func (c *Client) VoidInvoice(ctx context.Context, invoiceID string) error {
	body := map[string]any{
		"Invoices": []map[string]string{
			{"InvoiceID": invoiceID, "Status": StatusVoided},
		},
	}

	return c.request(ctx, http.MethodPost, "/Invoices", body, nil)
}

// CreatePayment records a payment of the given amount against an invoice.
func (c *Client) CreatePayment(ctx context.Context, invoiceID string, amount float64, accountCode string) error {
	body := map[string]any{
		"Payments": []Payment{
			{
				Invoice: Invoice{InvoiceID: invoiceID},
				Account: Account{Code: accountCode},
				Date:    time.Now().Format("2006-01-02"),
				Amount:  amount,
			},
		},
	}

	return c.request(ctx, http.MethodPut, "/Payments", body, nil)
}

func (c *Client) CreateCreditNote(ctx context.Context, cn *CreditNote) (*CreditNote, error) {
	body := map[string]any{"CreditNotes": []*CreditNote{cn}}

	var out struct {
		CreditNotes []CreditNote `json:"CreditNotes"`
	}
	if err := c.request(ctx, http.MethodPost, "/CreditNotes", body, &out); err != nil {
		return nil, err
	}
	if len(out.CreditNotes) == 0 {
		return nil, fmt.Errorf("xero: create credit note returned no credit notes")
	}

	return &out.CreditNotes[0], nil
}

// ContactExists reports whether a contact id still resolves in the ledger.
func (c *Client) ContactExists(ctx context.Context, contactID string) (bool, error) {
	var out struct {
		Contacts []Contact `json:"Contacts"`
	}
	err := c.request(ctx, http.MethodGet, "/Contacts/"+contactID, nil, &out)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return len(out.Contacts) > 0, nil
}

func (c *Client) request(ctx context.Context, method, path string, body any, out any) error {
	accessToken, tenantID, err := c.creds.ValidCredentials(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Xero-tenant-id", tenantID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("xero request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return &APIError{StatusCode: resp.StatusCode, Body: string(detail)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
