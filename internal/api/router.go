package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Status page with recent inventory updates
	r.Get("/", h.Home)

	// Shopify webhook delivery endpoints. Both run the same receive pipeline;
	// the topic header decides the handler.
	r.Post("/webhook/inventory", h.ReceiveWebhook)
	r.Post("/webhook/inventory/orders", h.ReceiveWebhook)

	// Xero OAuth connection flow
	r.Get("/xero/redirect", h.XeroRedirect)
	r.Get("/xero/callback", h.XeroCallback)

	// Expectation registration for the outbound write path
	r.Post("/internal/expectations", h.CreateExpectation)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
