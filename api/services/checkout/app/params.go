package app

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	stripe "github.com/stripe/stripe-go/v72"
)

var validate = validator.New()

// BuildSessionParams turns a request into the Checkout Session creation payload.
// Subscription requests carry a monthly recurrence; payment requests never do.
func BuildSessionParams(req SessionRequest) (*stripe.CheckoutSessionParams, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	unitAmount, err := ToMinorUnits(req.Amount)
	if err != nil {
		return nil, err
	}

	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency: stripe.String(Currency),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(req.ProductName()),
		},
		UnitAmount: stripe.Int64(unitAmount),
	}
	if req.Mode == ModeSubscription {
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval:      stripe.String(RecurringInterval),
			IntervalCount: stripe.Int64(RecurringIntervalCount),
		}
	}

	return &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(req.Mode)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: priceData,
				Quantity:  stripe.Int64(LineItemQuantity),
			},
		},
		PaymentMethodTypes:       stripe.StringSlice([]string{PaymentMethodCard}),
		SuccessURL:               stripe.String(SuccessURL),
		CancelURL:                stripe.String(CancelURL),
		BillingAddressCollection: stripe.String(BillingAddressCollection),
	}, nil
}
