package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"app/internal/service"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// WebhookHandler is the ingress for Stripe webhook deliveries. It sequences
// verification, classification and dispatch, and is the only place that maps
// processing errors onto HTTP responses.
type WebhookHandler struct {
	webhookSecret string
	catalogSvc    service.CatalogService
	subSvc        service.SubscriptionService
	archive       service.EventArchive
	logger        zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler. archive may be nil when
// event archival is not configured.
func NewWebhookHandler(webhookSecret string, catalogSvc service.CatalogService, subSvc service.SubscriptionService, archive service.EventArchive, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookSecret: webhookSecret,
		catalogSvc:    catalogSvc,
		subSvc:        subSvc,
		archive:       archive,
		logger:        logger.With().Str("handler", "WebhookHandler").Logger(),
	}
}

// RegisterRoutes mounts the webhook endpoint. No auth middleware: the
// signature check is the authentication.
func (h *WebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/webhooks", http.HandlerFunc(h.HandleWebhook))
}

func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read webhook payload")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to read payload"})
		return
	}

	if h.webhookSecret == "" {
		h.logger.Error().Msg("Webhook secret not configured")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Webhook secret not configured"})
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if sig == "" {
		h.logger.Error().Msg("No Stripe signature header on webhook request")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No signature found"})
		return
	}

	// Tolerate API version drift between the account's webhook configuration
	// and the SDK's pinned version; only the classified object shapes matter.
	event, err := webhook.ConstructEventWithOptions(payload, sig, h.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Webhook signature verification failed")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid signature"})
		return
	}
	h.logger.Info().Str("event_id", event.ID).Str("event_type", string(event.Type)).Msg("Webhook verified")

	ev, err := service.ClassifyEvent(event)
	if err != nil {
		h.logger.Error().Err(err).Str("event_id", event.ID).Msg("Failed to parse webhook payload")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "eventId": event.ID})
		return
	}
	if ev == nil {
		h.logger.Info().Str("event_type", string(event.Type)).Msg("Webhook event ignored")
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	ctx := r.Context()
	if h.archive != nil {
		h.archive.ArchiveEvent(ctx, event.ID, payload)
	}

	var procErr error
	switch e := ev.(type) {
	case service.ProductEvent:
		procErr = h.catalogSvc.UpsertProduct(ctx, e.Product)

	case service.PriceEvent:
		procErr = h.catalogSvc.UpsertPrice(ctx, e.Price)

	case service.SubscriptionEvent:
		if e.Subscription.Customer == nil {
			procErr = fmt.Errorf("subscription %s event has no customer reference", e.Subscription.ID)
			break
		}
		procErr = h.subSvc.Reconcile(ctx, e.Subscription.ID, e.Subscription.Customer.ID, e.Creation)

	case service.CheckoutEvent:
		cs := e.Session
		if cs.Mode != stripe.CheckoutSessionModeSubscription {
			h.logger.Info().Str("mode", string(cs.Mode)).Msg("Non-subscription checkout session, nothing to reconcile")
			break
		}
		if cs.Subscription == nil || cs.Customer == nil {
			h.logger.Warn().Str("event_id", event.ID).Msg("Checkout session missing subscription or customer reference")
			break
		}
		procErr = h.subSvc.Reconcile(ctx, cs.Subscription.ID, cs.Customer.ID, true)

	default:
		// Unreachable unless the classifier and this switch disagree.
		procErr = fmt.Errorf("%w: %s", service.ErrUnhandledEvent, event.Type)
	}

	if procErr != nil {
		h.logger.Error().Err(procErr).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("Webhook processing failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": procErr.Error(), "eventId": event.ID})
		return
	}

	h.logger.Info().Str("event_id", event.ID).Str("event_type", string(event.Type)).Msg("Webhook processed")
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
