package constants

// Static route constants
const (
	WebhookRoute        = "/webhook/:provider"
	HealthRoute         = "/up"
	StoreItemsRoute     = "/items"
	StoreOrdersRoute    = "/orders/:user_id"
	CreditorRoute       = "/transaction"
	CreditorLegacyRoute = "/credit_purchase"
)
