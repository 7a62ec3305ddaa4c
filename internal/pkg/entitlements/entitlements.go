package entitlements

import (
	"github.com/dokseo/dokseo/internal/pkg/subscription"
)

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// AllowedContent returns which content groups a tier may read.
func AllowedContent(tier Tier) (sample, library, challenge bool) {
	switch tier {
	case TierPremium:
		return true, true, true
	default:
		return true, false, false
	}
}

// TierFor maps a resolved subscription view to a content tier. A lapsed
// payment still inside its grace period keeps premium access so readers are
// not locked out while the payment retry runs.
func TierFor(view *subscription.View) Tier {
	if view == nil || view.Subscription == nil {
		return TierFree
	}
	if view.PaymentFailure != nil {
		return TierPremium
	}
	switch view.Status.Label {
	case subscription.StatusActive, subscription.StatusExpiringSoon:
		return TierPremium
	default:
		return TierFree
	}
}

// Access combines the resolved subscription view into final booleans for
// the three content groups.
func Access(view *subscription.View) (sample, library, challenge bool) {
	return AllowedContent(TierFor(view))
}
