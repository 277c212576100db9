package booking

import (
	"math"
	"time"

	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/domain"
)

// DateRange is a half-open stay interval [CheckIn, CheckOut). Both endpoints
// are calendar dates at UTC midnight.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewDateRange validates and builds a stay interval. A zero or negative
// length stay is rejected.
func NewDateRange(checkIn, checkOut time.Time) (DateRange, error) {
	r := DateRange{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
	if !r.CheckIn.Before(r.CheckOut) {
		return DateRange{}, domain.NewValidationError("check-in date must be before check-out date")
	}
	return r, nil
}

// Nights returns the number of billable nights, rounding partial days up.
func (r DateRange) Nights() int {
	return int(math.Ceil(r.CheckOut.Sub(r.CheckIn).Hours() / 24))
}

// Overlaps reports whether two half-open ranges share at least one night.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}
