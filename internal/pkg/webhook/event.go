package webhook

// Status is the internal lifecycle status of a payment event. Provider
// notification types are never passed through verbatim; each parser maps them
// onto this fixed vocabulary.
type Status string

const (
	StatusReceived        Status = "webhook_received"
	StatusSentToWebsocket Status = "sent_to_websocket"
	StatusSentToProcessor Status = "sent_to_processor"
	StatusPaid            Status = "paid"
)

// Valid reports whether s is one of the four internal statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusSentToWebsocket, StatusSentToProcessor, StatusPaid:
		return true
	default:
		return false
	}
}

// Event is the normalized, provider-agnostic webhook payload. Amount is
// always in major currency units; parsers convert minor units or micros.
// Metadata carries provider-specific extras for forwarding and debugging and
// is never interpreted by the dispatcher.
type Event struct {
	TransactionID string         `json:"transaction_id"`
	Amount        float64        `json:"amount"`
	Currency      string         `json:"currency"`
	Status        Status         `json:"status"`
	UserID        string         `json:"user_id,omitempty"`
	ItemID        string         `json:"item_or_subscription_id,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Parser converts a provider-specific wire payload into a normalized Event.
type Parser interface {
	Parse(raw []byte) (*Event, error)
}
