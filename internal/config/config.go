package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	Environment        string `envconfig:"ENV" default:"development"`
	DBConnectionString string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret          string `envconfig:"AUTH_JWT_SECRET" required:"true"`

	// Stripe settings. The secret key and webhook secret may be left empty
	// when the Secret Manager names below are configured instead.
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripeMaxRetries    int    `envconfig:"STRIPE_MAX_RETRIES" default:"3"`
	StripeTimeoutSec    int    `envconfig:"STRIPE_TIMEOUT_SEC" default:"30"`
	SiteURL             string `envconfig:"SITE_URL" default:"http://localhost:3000"`

	// GCP settings
	GCPProjectID            string `envconfig:"GCP_PROJECT_ID"`
	StripeKeySecretName     string `envconfig:"STRIPE_KEY_SECRET_NAME"`
	StripeWebhookSecretName string `envconfig:"STRIPE_WEBHOOK_SECRET_NAME"`
	BillingEventsTopic      string `envconfig:"BILLING_EVENTS_TOPIC" default:"billing-events"`

	// Event archive (S3-compatible storage) settings
	S3URL       string `envconfig:"S3_URL"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Region    string `envconfig:"S3_REGION"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`

	// Notification limit webhook settings
	NotificationLimitWebhookURL string `envconfig:"NOTIFICATION_LIMIT_WEBHOOK_URL"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
