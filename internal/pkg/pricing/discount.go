package pricing

// DiscountKind discriminates the two coupon discount modes. A coupon carries
// either a percentage or a flat amount, never both.
type DiscountKind string

const (
	DiscountNone       DiscountKind = "none"
	DiscountPercentage DiscountKind = "percentage"
	DiscountFlat       DiscountKind = "flat"
)

// Discount is the normalized discount carried by a coupon.
type Discount struct {
	Kind  DiscountKind
	Value int
}

// NewDiscount builds a Discount from the raw coupon columns. Percentage wins
// when both are set; values outside their valid range collapse to none so a
// corrupted row can never increase a price.
func NewDiscount(discountPercent, flatDiscountAmount int) Discount {
	if discountPercent > 0 && discountPercent <= 100 {
		return Discount{Kind: DiscountPercentage, Value: discountPercent}
	}
	if flatDiscountAmount > 0 {
		return Discount{Kind: DiscountFlat, Value: flatDiscountAmount}
	}
	return Discount{Kind: DiscountNone}
}

// IsZero reports whether the discount changes nothing.
func (d Discount) IsZero() bool {
	return d.Kind == DiscountNone || d.Value <= 0
}

// Amount returns how many won the discount takes off the given plan price.
// Never exceeds the plan price.
func (d Discount) Amount(planPrice int) int {
	if planPrice <= 0 {
		return 0
	}
	switch d.Kind {
	case DiscountPercentage:
		return planPrice * d.Value / 100
	case DiscountFlat:
		if d.Value > planPrice {
			return planPrice
		}
		return d.Value
	default:
		return 0
	}
}

// DiscountedPrice applies the discount to a plan price. The result is always
// within [0, planPrice].
func DiscountedPrice(planPrice int, d Discount) int {
	if planPrice <= 0 {
		return 0
	}
	return planPrice - d.Amount(planPrice)
}
