package stripegw

import (
	"context"
	"fmt"
	"net/http"

	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/checkout/session"

	gw "github.com/tbeaudouin05/flutter-checkout/api/services/checkout/gateway"
)

// Option customizes the Stripe backend used by the gateway.
type Option func(*stripe.BackendConfig)

// WithAPIURL points the client at a different API host, e.g. stripe-mock or an httptest server.
func WithAPIURL(url string) Option {
	return func(c *stripe.BackendConfig) {
		if url != "" {
			c.URL = stripe.String(url)
		}
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *stripe.BackendConfig) { c.HTTPClient = hc }
}

// WithLogger routes SDK logging to l.
func WithLogger(l stripe.LeveledLoggerInterface) Option {
	return func(c *stripe.BackendConfig) { c.LeveledLogger = l }
}

// client is the Stripe SDK-backed implementation of the gateway.
type client struct {
	sessions session.Client
}

// New returns a CheckoutGateway backed by the official Stripe SDK.
// The key is bound to the client; the SDK globals are left untouched.
func New(key string, opts ...Option) gw.CheckoutGateway {
	cfg := &stripe.BackendConfig{
		// a failed create is reported to the caller, never retried
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     NewSlogLogger(nil),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return client{sessions: session.Client{
		B:   stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
		Key: key,
	}}
}

func (c client) NewCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (stripe.CheckoutSession, error) {
	if params == nil {
		return stripe.CheckoutSession{}, fmt.Errorf("checkout session params are nil")
	}
	params.Context = ctx
	sess, err := c.sessions.New(params)
	if err != nil {
		return stripe.CheckoutSession{}, err
	}
	if sess == nil {
		return stripe.CheckoutSession{}, nil
	}
	return *sess, nil
}
