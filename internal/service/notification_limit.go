package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Category identifies a deal category by slug and tree depth.
type Category struct {
	Slug  string `json:"slug"`
	Level int    `json:"level"`
}

// NotificationLimitService asks the notification engine for the expected
// daily deal volume of a category selection. Used by the settings flow to
// warn users whose selection exceeds their plan's notification limit.
type NotificationLimitService interface {
	GetNotificationLimit(ctx context.Context, categories []Category) (int, error)
}

type notificationLimitService struct {
	webhookURL string
	client     *http.Client
	logger     zerolog.Logger
}

func NewNotificationLimitService(webhookURL string, logger zerolog.Logger) NotificationLimitService {
	return &notificationLimitService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With().Str("service", "NotificationLimitService").Logger(),
	}
}

func (s *notificationLimitService) GetNotificationLimit(ctx context.Context, categories []Category) (int, error) {
	body, err := json.Marshal(categories)
	if err != nil {
		return 0, fmt.Errorf("marshaling categories: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("calling notification limit webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr == nil && len(bodyBytes) > 0 {
			s.logger.Warn().Int("status_code", resp.StatusCode).Str("body", string(bodyBytes)).Msg("Notification limit webhook returned an error")
		}
		return 0, fmt.Errorf("notification limit webhook returned status %d", resp.StatusCode)
	}

	var out struct {
		MaxDealsPerDay int `json:"maxDealsPerDay"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decoding notification limit response: %w", err)
	}
	return out.MaxDealsPerDay, nil
}
