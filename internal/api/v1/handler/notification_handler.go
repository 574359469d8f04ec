package handler

import (
	"encoding/json"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// NotificationHandler exposes the expected-notification-volume lookup used by
// the preference settings flow.
type NotificationHandler struct {
	limitSvc service.NotificationLimitService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewNotificationHandler(limitSvc service.NotificationLimitService, v *validator.Validate, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{limitSvc: limitSvc, validate: v, logger: logger}
}

// RegisterRoutes mounts the notification endpoints.
func (h *NotificationHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("/notifications/limit", authMiddleware(http.HandlerFunc(h.Limit)))
}

func (h *NotificationHandler) Limit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.NotificationLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "invalid request payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	categories := make([]service.Category, 0, len(req.Categories))
	for _, c := range req.Categories {
		categories = append(categories, service.Category{Slug: c.Slug, Level: c.Level})
	}
	limit, err := h.limitSvc.GetNotificationLimit(r.Context(), categories)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch notification limit")
		http.Error(w, "failed to fetch notification limit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"maxDealsPerDay": limit})
}
