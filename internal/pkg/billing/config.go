package billing

import (
	"strings"

	"github.com/shopbill-app/shopbill/internal/pkg/env"
)

// Config carries the gateway credentials and webhook secret. It is injected
// into the Service at construction so tests can swap secrets and endpoints
// without touching globals.
type Config struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Currency      string
	GatewayURL    string
}

const defaultGatewayURL = "https://api.razorpay.com"

// NewConfigFromEnv reads the gateway configuration from the environment.
func NewConfigFromEnv() Config {
	return Config{
		KeyID:         strings.TrimSpace(env.GetEnv("RAZORPAY_KEY_ID", "")),
		KeySecret:     strings.TrimSpace(env.GetEnv("RAZORPAY_KEY_SECRET", "")),
		WebhookSecret: strings.TrimSpace(env.GetEnv("RAZORPAY_WEBHOOK_SECRET", "")),
		Currency:      strings.TrimSpace(env.GetEnv("PAYMENT_CURRENCY", "INR")),
		GatewayURL:    strings.TrimRight(env.GetEnv("RAZORPAY_API_BASE_URL", defaultGatewayURL), "/"),
	}
}
