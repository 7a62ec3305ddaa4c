package constants

// Static route constants
const (
	APIRoute      = "/api/v1"
	AdminAPIRoute = "/admin/api"
	// Billing providers POST here; the provider slug is a path parameter
	WebhookRoute = "/api/v1/billing/webhook"
)
