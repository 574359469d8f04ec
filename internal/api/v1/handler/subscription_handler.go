package handler

import (
	"encoding/json"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// SubscriptionHandler handles the user-facing billing endpoints.
type SubscriptionHandler struct {
	stripeSvc   service.StripeService
	customerSvc service.CustomerService
	subSvc      service.SubscriptionService
	userRepo    repository.UserRepository
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(stripeSvc service.StripeService, customerSvc service.CustomerService, subSvc service.SubscriptionService, userRepo repository.UserRepository, v *validator.Validate, logger zerolog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		stripeSvc:   stripeSvc,
		customerSvc: customerSvc,
		subSvc:      subSvc,
		userRepo:    userRepo,
		validate:    v,
		logger:      logger,
	}
}

// RegisterRoutes mounts the subscription endpoints.
func (h *SubscriptionHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("/subscriptions", authMiddleware(http.HandlerFunc(h.Current)))
	mux.Handle("/subscriptions/checkout", authMiddleware(http.HandlerFunc(h.Checkout)))
	mux.Handle("/subscriptions/portal", authMiddleware(http.HandlerFunc(h.Portal)))
}

// Current returns the caller's most recent subscription snapshot.
func (h *SubscriptionHandler) Current(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	sub, err := h.subSvc.GetSubscription(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch subscription")
		http.Error(w, "failed to fetch subscription", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscription": sub})
}

// Checkout creates a Stripe Checkout session for the requested price and
// returns its URL.
func (h *SubscriptionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.SubscriptionCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "invalid request payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	customerID, err := h.resolveCustomer(r, userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to resolve billing customer")
		http.Error(w, "failed to create checkout session", http.StatusInternalServerError)
		return
	}
	url, err := h.stripeSvc.CreateCheckoutSession(r.Context(), customerID, req.PriceID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create checkout session")
		http.Error(w, "failed to create checkout session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Portal creates a Stripe Customer Portal session for the caller.
func (h *SubscriptionHandler) Portal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	customerID, err := h.resolveCustomer(r, userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to resolve billing customer")
		http.Error(w, "failed to create portal session", http.StatusInternalServerError)
		return
	}
	url, err := h.stripeSvc.CreatePortalSession(r.Context(), customerID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create portal session")
		http.Error(w, "failed to create portal session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *SubscriptionHandler) resolveCustomer(r *http.Request, userID string) (string, error) {
	email := ""
	if user, err := h.userRepo.GetUserByID(r.Context(), userID); err == nil && user != nil {
		email = user.Email
	}
	return h.customerSvc.CreateOrRetrieveCustomer(r.Context(), userID, email)
}
