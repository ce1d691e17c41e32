package config

import (
	"log"
	"strings"
)

const (
	// LiveKeyPrefix identifies Stripe live-mode secret keys
	LiveKeyPrefix = "sk_live_"

	// RestrictedLiveKeyPrefix identifies Stripe live-mode restricted keys
	RestrictedLiveKeyPrefix = "rk_live_"
)

// IsLiveKey reports whether key moves real money.
func IsLiveKey(key string) bool {
	return strings.HasPrefix(key, LiveKeyPrefix) || strings.HasPrefix(key, RestrictedLiveKeyPrefix)
}

// CheckNotLiveKey aborts immediately if the configured Stripe key is a live-mode key.
// This should be called at the start of any test that talks to the Stripe API.
func CheckNotLiveKey() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if IsLiveKey(cfg.StripeSecretKey) {
		log.Fatal("Tests aborted: STRIPE_SECRET_KEY is a live-mode key")
	}
}
