// Package webhooks implements the inbound webhook receiver and the event
// log endpoint used to confirm deliveries are arriving.
package webhooks

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/shoplens/shoplens/internal/httputil"
	"github.com/shoplens/shoplens/pkg/webhook"
)

// Handler handles webhook endpoints.
type Handler struct {
	logger    *slog.Logger
	processor *webhook.Processor
}

// NewHandler creates a new webhooks handler.
func NewHandler(logger *slog.Logger, processor *webhook.Processor) *Handler {
	return &Handler{logger: logger, processor: processor}
}

// Receive accepts a webhook delivery. The response is always 200 for
// well-formed requests; processing problems are recorded in the event log
// rather than surfaced, so the sender does not retry endlessly.
// POST /api/webhooks/shopify
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	topic := r.Header.Get("X-Shopify-Topic")
	shopDomain := r.Header.Get("X-Shopify-Shop-Domain")
	if topic == "" || shopDomain == "" {
		httputil.Error(w, http.StatusBadRequest, "missing webhook headers")
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "unreadable body")
		return
	}

	event := h.processor.Process(r.Context(), topic, shopDomain, payload)
	httputil.JSON(w, http.StatusOK, map[string]any{"received": true, "id": event.ID})
}

// Check pops the oldest retained delivery from the event log, so polling
// this endpoint drains the log one event at a time.
// GET /api/webhooks/check
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	queue := h.processor.Queue()
	event, ok := queue.Dequeue()
	if !ok {
		httputil.JSON(w, http.StatusOK, map[string]any{"event": nil, "remaining": 0})
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"event": event, "remaining": queue.Len()})
}
