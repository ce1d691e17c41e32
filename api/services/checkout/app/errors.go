package app

import "errors"

// Typed errors for the checkout app layer. The callable boundary logs them
// and answers null; they never reach the caller.
var (
	// ErrInvalidRequest indicates the request failed struct validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidAmount indicates the amount cannot be charged in integer minor units.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrGateway indicates a failure from the Stripe gateway / API calls.
	ErrGateway = errors.New("gateway error")
	// ErrEmptyURL indicates Stripe created a session without a hosted URL.
	ErrEmptyURL = errors.New("session has no url")
)
