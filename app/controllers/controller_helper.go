package controllers

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dokseo/dokseo/internal/pkg/cache"
	"github.com/dokseo/dokseo/internal/pkg/session"
	"github.com/dokseo/dokseo/internal/pkg/usercontext"
)

const statusCacheTTL = 5 * time.Minute

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

func jsonValidationError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "validation_failed",
		"message": err.Error(),
	})
}

func jsonInternalError(c *fiber.Ctx, where string, err error) error {
	log.Printf("%s: %v", where, err)
	return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Something went wrong")
}

func statusCacheKey(userID uint) string {
	return fmt.Sprintf("subscription:status:%d", userID)
}

// cachedStatusView returns the cached JSON status view for a user, or "" on
// miss. Cache failures degrade to a DB read, never to an error.
func cachedStatusView(userID uint) string {
	val, err := cache.Get(statusCacheKey(userID))
	if err != nil {
		return ""
	}
	return val
}

func storeStatusView(userID uint, view interface{}) {
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := cache.Set(statusCacheKey(userID), raw, statusCacheTTL); err != nil {
		log.Printf("cache: storing status view for user %d failed: %v", userID, err)
	}
}

// invalidateSessionTier clears the session-cached content tier so the
// user-context middleware re-resolves it on the caller's next request. Every
// endpoint that can move a user between free and premium must call this
// alongside InvalidateStatusCache.
func invalidateSessionTier(c *fiber.Ctx) {
	if err := session.SetSessionValue(c, usercontext.KeyTier, ""); err != nil {
		log.Printf("session: clearing cached tier failed: %v", err)
	}
}

// InvalidateStatusCache drops the cached status view after any mutation that
// changes what the user would see.
func InvalidateStatusCache(userID uint) {
	if userID == 0 {
		return
	}
	if err := cache.Delete(statusCacheKey(userID)); err != nil {
		log.Printf("cache: invalidating status view for user %d failed: %v", userID, err)
	}
}
