package webhook

// CoinSubParser normalizes CoinSub subscription events.
type CoinSubParser struct{}

func (CoinSubParser) Parse(raw []byte) (*Event, error) {
	data, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	eventType := stringField(data, "event_type")
	payload := childObject(data, "data")

	if missing := missingFields(payload, "transaction_id", "amount", "currency"); len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	amount, _ := floatField(payload, "amount")

	return &Event{
		TransactionID: stringField(payload, "transaction_id"),
		Amount:        amount,
		Currency:      stringField(payload, "currency"),
		Status:        mapCoinSubStatus(eventType),
		UserID:        stringField(payload, "payer_id"),
		ItemID:        stringField(payload, "subscription_id"),
		Metadata: map[string]any{
			"event_type":      eventType,
			"subscription_id": stringField(payload, "subscription_id"),
			"merchant_id":     stringField(payload, "merchant_id"),
			"plan_id":         stringField(payload, "plan_id"),
		},
	}, nil
}

func mapCoinSubStatus(eventType string) Status {
	switch eventType {
	case "subscription_created":
		return StatusReceived
	case "subscription_activated":
		return StatusPaid
	case "subscription_canceled":
		return StatusSentToProcessor
	case "subscription_renewed":
		return StatusPaid
	case "subscription_failed":
		return StatusReceived
	case "subscription_expired":
		return StatusSentToProcessor
	default:
		return StatusReceived
	}
}
