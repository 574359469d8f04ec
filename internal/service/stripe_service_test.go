package service

import (
	"testing"

	"app/internal/config"

	"github.com/rs/zerolog"
)

func TestNewStripeService(t *testing.T) {
	cfg := &config.Config{
		StripeSecretKey:  "sk_test_123",
		StripeMaxRetries: 3,
		StripeTimeoutSec: 30,
		SiteURL:          "http://localhost:3000",
	}
	svc := NewStripeService(cfg, zerolog.Nop())
	if svc == nil {
		t.Fatal("expected a constructed Stripe service")
	}
}

func TestOptString(t *testing.T) {
	if optString("") != nil {
		t.Fatal("expected nil for an empty string")
	}
	got := optString("London")
	if got == nil || *got != "London" {
		t.Fatalf("expected pointer to London, got %v", got)
	}
}
