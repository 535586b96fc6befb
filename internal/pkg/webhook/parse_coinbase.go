package webhook

import "strings"

// CoinbaseParser normalizes Coinbase Commerce charge events.
type CoinbaseParser struct{}

func (CoinbaseParser) Parse(raw []byte) (*Event, error) {
	data, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	event := childObject(data, "event")
	eventType := stringField(event, "type")
	charge := childObject(event, "data")

	if missing := missingFields(charge, "code", "pricing"); len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	local := childObject(childObject(charge, "pricing"), "local")
	amount, _ := floatField(local, "amount")
	currency := stringField(local, "currency")
	if currency == "" {
		currency = "USD"
	}

	metadata := childObject(charge, "metadata")

	// The most recent payment carries network and confirmation time.
	latestPayment := map[string]any{}
	if payments := childArray(charge, "payments"); len(payments) > 0 {
		if last, ok := payments[len(payments)-1].(map[string]any); ok {
			latestPayment = last
		}
	}

	return &Event{
		TransactionID: stringField(charge, "code"),
		Amount:        amount,
		Currency:      currency,
		Status:        mapCoinbaseStatus(eventType, coinbaseChargeStatus(charge)),
		UserID:        stringField(metadata, "user_id"),
		ItemID:        stringField(metadata, "subscription_id"),
		Metadata: map[string]any{
			"charge_code":    stringField(charge, "code"),
			"payment_method": stringField(latestPayment, "network"),
			"confirmed_at":   stringField(latestPayment, "confirmed_at"),
		},
	}, nil
}

// coinbaseChargeStatus reads the charge status from the explicit field or,
// failing that, from the newest timeline entry.
func coinbaseChargeStatus(charge map[string]any) string {
	if status := stringField(charge, "status"); status != "" {
		return status
	}
	timeline := childArray(charge, "timeline")
	if len(timeline) == 0 {
		return ""
	}
	if last, ok := timeline[len(timeline)-1].(map[string]any); ok {
		return stringField(last, "status")
	}
	return ""
}

func mapCoinbaseStatus(eventType, chargeStatus string) Status {
	switch eventType {
	case "charge:created":
		return StatusReceived
	case "charge:confirmed":
		if strings.EqualFold(chargeStatus, "completed") {
			return StatusPaid
		}
		return StatusReceived
	case "charge:failed":
		return StatusReceived
	case "charge:delayed":
		return StatusSentToProcessor
	case "charge:pending":
		return StatusSentToWebsocket
	case "charge:resolved":
		return StatusPaid
	default:
		return StatusReceived
	}
}
