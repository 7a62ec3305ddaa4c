package billing

// Webhook event types the payment provider delivers.
const (
	EventPaymentSucceeded      = "payment.succeeded"
	EventPaymentFailed         = "payment.failed"
	EventSubscriptionCancelled = "subscription.cancelled"
)

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// webhookPayload is the provider-agnostic body shape HandleEvent consumes.
type webhookPayload struct {
	SubscriptionID uint   `json:"subscription_id"`
	FailureReason  string `json:"failure_reason,omitempty"`
}
