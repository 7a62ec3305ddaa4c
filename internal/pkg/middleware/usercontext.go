package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/dokseo/dokseo/internal/pkg/database"
	"github.com/dokseo/dokseo/internal/pkg/entitlements"
	"github.com/dokseo/dokseo/internal/pkg/session"
	"github.com/dokseo/dokseo/internal/pkg/subscription"
	"github.com/dokseo/dokseo/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request
// This centralizes user session handling and eliminates code duplication
func UserContextMiddleware(c *fiber.Ctx) error {
	// Get session with error handling
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		// On error: set as anonymous user
		c.Locals(usercontext.ContextKey, usercontext.UserContext{
			IsLoggedIn: false,
			IsAdmin:    false,
		})
		return c.Next()
	}

	// Get user ID from session
	userID := sess.Get(usercontext.KeyUserID)
	if userID == nil {
		// Anonymous user - no session data
		c.Locals(usercontext.ContextKey, usercontext.UserContext{
			IsLoggedIn: false,
			IsAdmin:    false,
		})
		return c.Next()
	}

	// User is logged in - get additional data
	username := session.GetSessionValue(c, usercontext.KeyUsername)
	isAdmin := sess.Get(usercontext.KeyIsAdmin)

	// Determine content tier with session-first strategy
	tier, refreshed := cachedTier(session.GetSessionValue(c, usercontext.KeyTier), func() entitlements.Tier {
		return resolveTier(userID.(uint))
	})
	if refreshed {
		// cache in session until a subscription mutation clears it
		_ = session.SetSessionValue(c, usercontext.KeyTier, tier)
	}

	// Set complete user context
	userCtx := usercontext.UserContext{
		UserID:     userID.(uint),
		Username:   username,
		IsLoggedIn: true,
		IsAdmin:    isAdmin != nil && isAdmin.(bool),
		Tier:       tier,
	}
	c.Locals(usercontext.ContextKey, userCtx)

	return c.Next()
}

// cachedTier returns the session-cached tier, resolving it fresh when the
// cached value is empty. Subscription mutations clear the cached value so the
// next request picks up the new tier instead of riding the session lifetime.
func cachedTier(cached string, resolve func() entitlements.Tier) (tier string, refreshed bool) {
	if cached != "" {
		return cached, false
	}
	return string(resolve()), true
}

// resolveTier loads the user's subscription state once per session. Users
// without a subscription read as free tier.
func resolveTier(userID uint) entitlements.Tier {
	db := database.GetDB()
	if db == nil {
		return entitlements.TierFree
	}
	view, err := subscription.NewServiceFromDB(db).StatusView(context.Background(), userID)
	if err != nil {
		return entitlements.TierFree
	}
	return entitlements.TierFor(view)
}
