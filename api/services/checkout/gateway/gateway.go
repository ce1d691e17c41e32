package gateway

//go:generate mockgen -destination=mock/gateway_mock.go -package=mock . CheckoutGateway

import (
	"context"

	stripe "github.com/stripe/stripe-go/v72"
)

// CheckoutGateway abstracts the Stripe Checkout operations needed by the app layer.
// Methods return values (not pointers) to keep SDK pointer types out of the app layer.
type CheckoutGateway interface {
	// NewCheckoutSession creates a hosted Checkout Session. Exactly one API call is made.
	NewCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (stripe.CheckoutSession, error)
}
