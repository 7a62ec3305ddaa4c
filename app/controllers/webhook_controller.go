package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/dokseo/dokseo/internal/pkg/billing"
	"github.com/dokseo/dokseo/internal/pkg/database"
	"github.com/dokseo/dokseo/internal/pkg/env"
)

// webhookEnvelope is the minimal part of the body shared by all providers.
type webhookEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

func firstHeaderValue(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		v := strings.TrimSpace(c.Get(k))
		if v != "" {
			return v
		}
	}
	return ""
}

// webhookSecret prefers a per-provider secret, falling back to the shared one.
func webhookSecret(provider string) string {
	key := strings.ToUpper(provider) + "_WEBHOOK_SECRET"
	if s := env.GetEnv(key, ""); s != "" {
		return s
	}
	return env.GetEnv("BILLING_WEBHOOK_SECRET", "")
}

// webhookFailureStatus separates deliveries the provider sent wrong from
// failures on our side. Bad payloads and unknown subscriptions get 400 so the
// provider stops retrying them; anything else gets 500 and stays retryable.
func webhookFailureStatus(err error) int {
	if errors.Is(err, billing.ErrBadPayload) || errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// HandleBillingWebhook receives payment provider callbacks. Deliveries are
// persisted idempotently; a redelivery is acknowledged without reapplying.
func HandleBillingWebhook(c *fiber.Ctx) error {
	provider := strings.ToLower(strings.TrimSpace(c.Params("provider")))
	if provider == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "provider is required")
	}

	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := firstHeaderValue(c, "X-Webhook-Signature", "X-Signature")
	secret := webhookSecret(provider)

	if !billing.VerifyWebhookSignature(rawBody, signature, secret) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	var envelope webhookEnvelope
	_ = json.Unmarshal(rawBody, &envelope)
	eventID := firstHeaderValue(c, "X-Webhook-Id", "X-Event-Id")
	if eventID == "" {
		eventID = envelope.ID
	}
	eventType := firstHeaderValue(c, "X-Event-Type")
	if eventType == "" {
		eventType = envelope.Type
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	out, err := svc.HandleEvent(c.Context(), billing.WebhookEventInput{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       eventType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  true,
	})
	if err != nil {
		status := webhookFailureStatus(err)
		if status == fiber.StatusInternalServerError {
			log.Printf("billing webhook %s: %v", provider, err)
		}
		return c.Status(status).JSON(fiber.Map{"error": "webhook_processing_failed"})
	}
	if out.Duplicate {
		return c.JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	// The cached status view is stale after any billing transition.
	InvalidateStatusCache(out.UserID)
	return c.JSON(fiber.Map{"ok": true})
}
