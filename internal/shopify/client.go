package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when a lookup resolves to nothing on the Shopify
// side (unknown inventory item, missing SKU, deleted order). Callers treat
// it as a permanent no-op rather than a retryable failure.
var ErrNotFound = errors.New("shopify: not found")

// Client talks to the Shopify Admin API (REST and GraphQL).
type Client struct {
	storeDomain string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
}

func NewClient(storeDomain, accessToken, apiVersion string) *Client {
	return &Client{
		storeDomain: storeDomain,
		accessToken: accessToken,
		apiVersion:  apiVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ResolveVariant finds the product variant owning an inventory item.
// Returns ErrNotFound when the inventory item has no variant.
func (c *Client) ResolveVariant(ctx context.Context, inventoryItemID int64) (*Variant, error) {
	const query = `
	query ($inventoryItemId: ID!) {
	  inventoryItem(id: $inventoryItemId) {
	    id
	    variant {
	      id
	      sku
	      title
	      price
	      product {
	        id
	        title
	        bodyHtml
	      }
	    }
	  }
	}`

	vars := map[string]any{
		"inventoryItemId": fmt.Sprintf("gid://shopify/InventoryItem/%d", inventoryItemID),
	}

	var out struct {
		InventoryItem *struct {
			Variant *Variant `json:"variant"`
		} `json:"inventoryItem"`
	}
	if err := c.graphql(ctx, query, vars, &out); err != nil {
		return nil, err
	}

	if out.InventoryItem == nil || out.InventoryItem.Variant == nil {
		return nil, ErrNotFound
	}

	return out.InventoryItem.Variant, nil
}

// ResolveProduct fetches title and description for a product by its numeric
// id.
func (c *Client) ResolveProduct(ctx context.Context, productID string) (*Product, error) {
	url := fmt.Sprintf("https://%s/admin/api/%s/products/%s.json", c.storeDomain, c.apiVersion, productID)

	var out struct {
		Product *struct {
			Title    string `json:"title"`
			BodyHTML string `json:"body_html"`
		} `json:"product"`
	}
	if err := c.get(ctx, url, &out); err != nil {
		return nil, err
	}
	if out.Product == nil {
		return nil, ErrNotFound
	}

	return &Product{Title: out.Product.Title, BodyHTML: out.Product.BodyHTML}, nil
}

// ResolveUnitCost returns the purchase cost of the variant backed by the
// given inventory item, or 0 when no cost is recorded.
func (c *Client) ResolveUnitCost(ctx context.Context, productGID string, inventoryItemID int64) (float64, error) {
	const query = `
	query getProductVariantsUnitCost($id: ID!) {
	  product(id: $id) {
	    variants(first: 10) {
	      nodes {
	        id
	        sku
	        inventoryItem {
	          id
	          unitCost {
	            amount
	            currencyCode
	          }
	        }
	      }
	    }
	  }
	}`

	var out struct {
		Product *struct {
			Variants struct {
				Nodes []struct {
					InventoryItem struct {
						ID       string `json:"id"`
						UnitCost *struct {
							Amount string `json:"amount"`
						} `json:"unitCost"`
					} `json:"inventoryItem"`
				} `json:"nodes"`
			} `json:"variants"`
		} `json:"product"`
	}
	if err := c.graphql(ctx, query, map[string]any{"id": productGID}, &out); err != nil {
		return 0, err
	}
	if out.Product == nil {
		return 0, nil
	}

	wantGID := fmt.Sprintf("gid://shopify/InventoryItem/%d", inventoryItemID)
	for _, node := range out.Product.Variants.Nodes {
		if node.InventoryItem.ID != wantGID || node.InventoryItem.UnitCost == nil {
			continue
		}
		cost, err := strconv.ParseFloat(node.InventoryItem.UnitCost.Amount, 64)
		if err != nil {
			return 0, fmt.Errorf("parse unit cost %q: %w", node.InventoryItem.UnitCost.Amount, err)
		}
		return cost, nil
	}

	return 0, nil
}

// ResolveOrderReference maps a numeric order id to the human-readable order
// name used as the invoice reference.
func (c *Client) ResolveOrderReference(ctx context.Context, orderID int64) (string, error) {
	url := fmt.Sprintf("https://%s/admin/api/%s/orders/%d.json", c.storeDomain, c.apiVersion, orderID)

	var out struct {
		Order *struct {
			Name string `json:"name"`
		} `json:"order"`
	}
	if err := c.get(ctx, url, &out); err != nil {
		return "", err
	}
	if out.Order == nil || out.Order.Name == "" {
		return "", ErrNotFound
	}

	return out.Order.Name, nil
}

// EnsureWebhookRegistered creates a webhook subscription unless one already
// exists for the same topic and address.
func (c *Client) EnsureWebhookRegistered(ctx context.Context, topic, address string) error {
	listURL := fmt.Sprintf("https://%s/admin/api/%s/webhooks.json", c.storeDomain, c.apiVersion)

	var existing struct {
		Webhooks []struct {
			Topic   string `json:"topic"`
			Address string `json:"address"`
		} `json:"webhooks"`
	}
	if err := c.get(ctx, listURL, &existing); err != nil {
		return fmt.Errorf("list webhooks: %w", err)
	}

	for _, w := range existing.Webhooks {
		if w.Topic == topic && w.Address == address {
			return nil
		}
	}

	body := map[string]any{
		"webhook": map[string]any{
			"topic":   topic,
			"address": address,
			"format":  "json",
		},
	}
	if err := c.post(ctx, listURL, body, nil); err != nil {
		return fmt.Errorf("register webhook %s: %w", topic, err)
	}

	return nil
}

// ExtractIDFromGID turns "gid://shopify/Product/123" into "123".
func ExtractIDFromGID(gid string) string {
	parts := strings.Split(gid, "/")
	return parts[len(parts)-1]
}

func (c *Client) graphql(ctx context.Context, query string, variables map[string]any, out any) error {
	url := fmt.Sprintf("https://%s/admin/api/%s/graphql.json", c.storeDomain, c.apiVersion)

	reqBody := map[string]any{"query": query, "variables": variables}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := c.post(ctx, url, reqBody, &envelope); err != nil {
		return err
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("shopify graphql: %s", envelope.Errors[0].Message)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode graphql data: %w", err)
		}
	}

	return nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, url string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("shopify %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, detail)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
