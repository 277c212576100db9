package booking

import "github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/domain"

// Quote is the outcome of a price calculation.
type Quote struct {
	Nights          int
	TotalPriceCents int64
}

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// Price returns the night count and total price for the given stay at the
	// given nightly rate.
	Price(stay DateRange, nightlyRateCents int64) (Quote, error)
}

// NightlyRatePricing is the default strategy: total = nights x nightly rate.
type NightlyRatePricing struct{}

// NewNightlyRatePricing creates a new NightlyRatePricing.
func NewNightlyRatePricing() *NightlyRatePricing {
	return &NightlyRatePricing{}
}

// Price computes nights = ceil(stay length / 1 day) and an exact integer
// total. The DateRange constructor already rejects non-positive stays, but a
// zero-night quote is still refused here so the invariant holds for ranges
// built elsewhere.
func (p *NightlyRatePricing) Price(stay DateRange, nightlyRateCents int64) (Quote, error) {
	nights := stay.Nights()
	if nights <= 0 {
		return Quote{}, domain.NewValidationError("stay must be at least one night")
	}
	if nightlyRateCents <= 0 {
		return Quote{}, domain.NewValidationError("nightly rate must be positive")
	}
	return Quote{
		Nights:          nights,
		TotalPriceCents: int64(nights) * nightlyRateCents,
	}, nil
}
