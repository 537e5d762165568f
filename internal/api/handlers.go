package api

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	domainExpectation "github.com/adevcorp-0/xero-shopify/internal/domain/expectation"
	"github.com/adevcorp-0/xero-shopify/internal/domain/inventorylog"
	"github.com/adevcorp-0/xero-shopify/internal/shopify"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_received_total",
		Help: "The total number of webhook deliveries that passed signature verification",
	}, []string{"topic"})
	signatureFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webhook_signature_failures_total",
		Help: "The total number of webhook deliveries rejected for a bad HMAC signature",
	})
	duplicatesSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webhook_duplicates_suppressed_total",
		Help: "The total number of webhook deliveries suppressed by the dedup window",
	})
	syncErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_sync_errors_total",
		Help: "The total number of webhook deliveries whose sync handler failed",
	}, []string{"topic"})
)

// InventorySyncer et al. are the topic handlers behind the dispatch switch.
type InventorySyncer interface {
	Execute(ctx context.Context, p shopify.InventoryLevelPayload) error
}

type OrderSyncer interface {
	Execute(ctx context.Context, order shopify.OrderPayload) error
}

type RefundSyncer interface {
	Execute(ctx context.Context, refund shopify.RefundPayload) error
}

// Admitter is the dedup window.
type Admitter interface {
	Admit(ctx context.Context, topic string, body []byte) (bool, error)
}

// ExpectationRecorder registers self-caused inventory changes.
type ExpectationRecorder interface {
	Record(ctx context.Context, sku string, locationID int64, expectedQty int64, reason string) (*domainExpectation.Expectation, error)
}

// InventoryLogStore backs the status page.
type InventoryLogStore interface {
	Append(ctx context.Context, e *inventorylog.Entry) error
	ListRecent(ctx context.Context, limit int) ([]*inventorylog.Entry, error)
}

// OAuth is the Xero connection flow.
type OAuth interface {
	AuthorizeURL(state string) string
	Connect(ctx context.Context, code string) (tenantID string, err error)
}

type Handlers struct {
	webhookSecret  string
	internalToken  string
	window         Admitter
	inventorySync  InventorySyncer
	orderPaid      OrderSyncer
	orderCancelled OrderSyncer
	refundSync     RefundSyncer
	expectations   ExpectationRecorder
	logs           InventoryLogStore
	oauth          OAuth
}

func NewHandlers(
	webhookSecret string,
	internalToken string,
	window Admitter,
	inventorySync InventorySyncer,
	orderPaid OrderSyncer,
	orderCancelled OrderSyncer,
	refundSync RefundSyncer,
	expectations ExpectationRecorder,
	logs InventoryLogStore,
	oauth OAuth,
) *Handlers {
	return &Handlers{
		webhookSecret:  webhookSecret,
		internalToken:  internalToken,
		window:         window,
		inventorySync:  inventorySync,
		orderPaid:      orderPaid,
		orderCancelled: orderCancelled,
		refundSync:     refundSync,
		expectations:   expectations,
		logs:           logs,
		oauth:          oauth,
	}
}

// ReceiveWebhook is the full inbound pipeline: signature check over the raw
// bytes, dedup admission, then dispatch by topic. Duplicates and
// business-level no-ops both answer 200 so Shopify stops redelivering.
func (h *Handlers) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "cannot read body", http.StatusBadRequest)
		return
	}

	topic := r.Header.Get(shopify.HeaderTopic)

	if !shopify.VerifySignature(body, r.Header.Get(shopify.HeaderHmac), h.webhookSecret) {
		signatureFailures.Inc()
		slog.Warn("webhook signature verification failed", "topic", topic)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	webhooksReceived.WithLabelValues(topic).Inc()

	accepted, err := h.window.Admit(ctx, topic, body)
	if err != nil {
		// The window is advisory; handlers re-check ledger state themselves.
		slog.Warn("dedup admission check failed, processing anyway", "topic", topic, "error", err)
	}
	if !accepted {
		duplicatesSuppressed.Inc()
		slog.Info("duplicate delivery suppressed", "topic", topic)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Duplicate"))
		return
	}

	if err := h.dispatch(ctx, topic, body); err != nil {
		syncErrors.WithLabelValues(topic).Inc()
		slog.Error("webhook handling failed", "topic", topic, "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Received"))
}

func (h *Handlers) dispatch(ctx context.Context, topic string, body []byte) error {
	switch topic {
	case shopify.TopicInventoryLevelsUpdate:
		var p shopify.InventoryLevelPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return fmt.Errorf("parse inventory payload: %w", err)
		}
		h.appendLog(ctx, p)
		return h.inventorySync.Execute(ctx, p)

	case shopify.TopicOrdersPaid, shopify.TopicOrdersCreate:
		var order shopify.OrderPayload
		if err := json.Unmarshal(body, &order); err != nil {
			return fmt.Errorf("parse order payload: %w", err)
		}
		return h.orderPaid.Execute(ctx, order)

	case shopify.TopicOrdersCancelled:
		var order shopify.OrderPayload
		if err := json.Unmarshal(body, &order); err != nil {
			return fmt.Errorf("parse order payload: %w", err)
		}
		return h.orderCancelled.Execute(ctx, order)

	case shopify.TopicRefundsCreate:
		var refund shopify.RefundPayload
		if err := json.Unmarshal(body, &refund); err != nil {
			return fmt.Errorf("parse refund payload: %w", err)
		}
		return h.refundSync.Execute(ctx, refund)

	case shopify.TopicOrdersUpdated, shopify.TopicProductsUpdate, shopify.TopicInventoryTransferCreate:
		// Audit only
		slog.Info("received webhook", "topic", topic)
		return nil

	default:
		slog.Warn("unhandled webhook topic", "topic", topic)
		return nil
	}
}

func (h *Handlers) appendLog(ctx context.Context, p shopify.InventoryLevelPayload) {
	err := h.logs.Append(ctx, &inventorylog.Entry{
		InventoryItemID: p.InventoryItemID,
		Available:       p.Available,
		UpdatedAt:       p.UpdatedAt,
	})
	if err != nil {
		slog.Warn("failed to append inventory log", "error", err)
	}
}

var homeTemplate = template.Must(template.New("home").Parse(`<h1>Connect to Xero</h1>
<a href="/xero/redirect"><button>Connect to Xero</button></a>
<hr/>
<h1>Shopify Inventory Updates</h1>
{{if not .}}
<p>No updates yet.</p>
{{else}}
<ul>
{{range $i, $e := .}}
<li><strong>{{$i}}:</strong> Inventory Item ID: {{$e.InventoryItemID}}, Available: {{$e.Available}}, Updated At: {{$e.UpdatedAt}}</li>
{{end}}
</ul>
{{end}}
`))

func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	entries, err := h.logs.ListRecent(r.Context(), 50)
	if err != nil {
		slog.Error("failed to list inventory logs", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := homeTemplate.Execute(w, entries); err != nil {
		slog.Error("failed to render home page", "error", err)
	}
}

func (h *Handlers) XeroRedirect(w http.ResponseWriter, r *http.Request) {
	state := uuid.New().String()
	http.Redirect(w, r, h.oauth.AuthorizeURL(state), http.StatusFound)
}

func (h *Handlers) XeroCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	tenantID, err := h.oauth.Connect(r.Context(), code)
	if err != nil {
		slog.Error("xero oauth connect failed", "error", err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<p>Something went wrong connecting to Xero.</p><a href="/">Back</a>`))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<h1>Connected to Xero</h1><p><strong>Tenant ID:</strong> %s</p><a href="/">Back to Home</a>`, template.HTMLEscapeString(tenantID))
}

// CreateExpectation lets the outbound inventory write path register a
// self-caused change before Shopify echoes it back.
func (h *Handlers) CreateExpectation(w http.ResponseWriter, r *http.Request) {
	if h.internalToken == "" || r.Header.Get("X-Internal-Token") != h.internalToken {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		SKU              string `json:"sku"`
		LocationID       int64  `json:"location_id"`
		ExpectedQuantity int64  `json:"expected_quantity"`
		Reason           string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SKU == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	e, err := h.expectations.Record(r.Context(), req.SKU, req.LocationID, req.ExpectedQuantity, req.Reason)
	if err != nil {
		slog.Error("failed to record expectation", "sku", req.SKU, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(e)
}
