package app

import (
	"fmt"
	"math"
)

// minorUnitTolerance absorbs float error in amount*100, e.g. 0.29*100 = 28.999999999999996.
const minorUnitTolerance = 1e-6

// ToMinorUnits converts an amount in major units (dollars) to Stripe minor units (cents).
// The product amount*100 has to be integral; fractions of a cent are rejected.
// Products within minorUnitTolerance of a whole cent are rounded, so 0.29 becomes 29.
// Sending the raw product (28.999999999999996) instead would be rejected by Stripe.
func ToMinorUnits(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: %v is not a finite number", ErrInvalidAmount, amount)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: %v must be positive", ErrInvalidAmount, amount)
	}
	scaled := amount * 100
	cents := math.Round(scaled)
	if math.Abs(scaled-cents) > minorUnitTolerance {
		return 0, fmt.Errorf("%w: %v has fractions of a cent", ErrInvalidAmount, amount)
	}
	if cents < 1 {
		return 0, fmt.Errorf("%w: %v is less than one minor unit", ErrInvalidAmount, amount)
	}
	if cents > MaxUnitAmount {
		return 0, fmt.Errorf("%w: %v exceeds the maximum of %d minor units", ErrInvalidAmount, amount, MaxUnitAmount)
	}
	return int64(cents), nil
}
