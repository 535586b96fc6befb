package webhook

import "strings"

// PayPalParser normalizes PayPal REST webhook events. Sale events and
// billing-subscription events carry differently shaped resources.
type PayPalParser struct{}

func (PayPalParser) Parse(raw []byte) (*Event, error) {
	data, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	eventType := stringField(data, "event_type")
	resource := childObject(data, "resource")

	if strings.HasPrefix(eventType, "BILLING.SUBSCRIPTION.") {
		return parsePayPalSubscription(eventType, data, resource)
	}

	if missing := missingFields(resource, "id", "amount", "state"); len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	amount := childObject(resource, "amount")
	total, _ := floatField(amount, "total")
	currency := stringField(amount, "currency")
	if currency == "" {
		currency = "USD"
	}

	return &Event{
		TransactionID: stringField(resource, "id"),
		Amount:        total,
		Currency:      currency,
		Status:        mapPayPalStatus(eventType, stringField(resource, "state")),
		UserID:        stringField(resource, "custom_id"),
		ItemID:        stringField(resource, "billing_agreement_id"),
		Metadata: map[string]any{
			"event_type":           eventType,
			"state":                stringField(resource, "state"),
			"parent_payment":       stringField(resource, "parent_payment"),
			"billing_agreement_id": stringField(resource, "billing_agreement_id"),
		},
	}, nil
}

// parsePayPalSubscription handles BILLING.SUBSCRIPTION.* resources, which
// carry the subscription id at resource.id and the amount, when present,
// under billing_info.last_payment.
func parsePayPalSubscription(eventType string, data, resource map[string]any) (*Event, error) {
	if missing := missingFields(resource, "id"); len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	lastPayment := childObject(childObject(resource, "billing_info"), "last_payment")
	payAmount := childObject(lastPayment, "amount")
	value, _ := floatField(payAmount, "value")
	currency := stringField(payAmount, "currency_code")
	if currency == "" {
		currency = "USD"
	}

	itemID := stringField(resource, "plan_id")
	if itemID == "" {
		itemID = stringField(resource, "id")
	}

	return &Event{
		TransactionID: stringField(resource, "id"),
		Amount:        value,
		Currency:      currency,
		Status:        mapPayPalStatus(eventType, ""),
		UserID:        stringField(resource, "custom_id"),
		ItemID:        itemID,
		Metadata: map[string]any{
			"event_type": eventType,
			"plan_id":    stringField(resource, "plan_id"),
			"summary":    stringField(data, "summary"),
		},
	}, nil
}

func mapPayPalStatus(eventType, state string) Status {
	switch eventType {
	case "PAYMENT.SALE.COMPLETED":
		if state == "completed" {
			return StatusPaid
		}
		return StatusReceived
	case "PAYMENT.SALE.PENDING":
		return StatusSentToWebsocket
	case "PAYMENT.SALE.DENIED":
		return StatusReceived
	case "PAYMENT.SALE.REFUNDED":
		return StatusSentToProcessor
	case "BILLING.SUBSCRIPTION.CREATED":
		return StatusReceived
	case "BILLING.SUBSCRIPTION.ACTIVATED":
		return StatusPaid
	case "BILLING.SUBSCRIPTION.UPDATED",
		"BILLING.SUBSCRIPTION.CANCELLED",
		"BILLING.SUBSCRIPTION.SUSPENDED",
		"BILLING.SUBSCRIPTION.EXPIRED":
		return StatusSentToProcessor
	default:
		return StatusReceived
	}
}
