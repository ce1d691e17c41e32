package app

import "time"

// Mode is the Checkout Session mode.
type Mode string

const (
	ModePayment      Mode = "payment"
	ModeSubscription Mode = "subscription"
)

// Fixed session settings shared by both entry points
const (
	Currency                 = "USD"
	PaymentProductName       = "Flutter Payment"
	SubscriptionProductName  = "Flutter Subscription"
	PaymentMethodCard        = "card"
	SuccessURL               = "https://www.success.com"
	CancelURL                = "https://www.cancelled.com"
	BillingAddressCollection = "required"
	RecurringInterval        = "month"
	RecurringIntervalCount   = 1
	LineItemQuantity         = 1
)

// MaxUnitAmount is the largest unit_amount Stripe accepts (eight digits).
const MaxUnitAmount = 99999999

// SessionRequest is the validated input of one session creation.
type SessionRequest struct {
	Mode   Mode    `validate:"required,oneof=payment subscription"`
	Amount float64 `validate:"gt=0"`
}

// ProductName returns the line item name used for the request's mode.
func (r SessionRequest) ProductName() string {
	if r.Mode == ModeSubscription {
		return SubscriptionProductName
	}
	return PaymentProductName
}

// SessionRecord describes a created session for the optional ledger.
type SessionRecord struct {
	SessionID  string
	Mode       Mode
	UnitAmount int64
	Currency   string
	CreatedAt  time.Time
}
