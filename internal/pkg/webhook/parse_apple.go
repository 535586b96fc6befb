package webhook

// AppleParser normalizes App Store server notifications (v1 shape with
// unified_receipt).
type AppleParser struct{}

func (AppleParser) Parse(raw []byte) (*Event, error) {
	data, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	notificationType := stringField(data, "notification_type")

	// latest_receipt_info is a list ordered newest-first; some payload
	// variants put it at the top level instead of under unified_receipt.
	receipts := childArray(childObject(data, "unified_receipt"), "latest_receipt_info")
	if receipts == nil {
		receipts = childArray(data, "latest_receipt_info")
	}
	receipt := map[string]any{}
	if len(receipts) > 0 {
		if first, ok := receipts[0].(map[string]any); ok {
			receipt = first
		}
	}

	if missing := missingFields(receipt, "transaction_id", "price", "currency"); len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	amount, _ := floatField(receipt, "price")

	return &Event{
		TransactionID: stringField(receipt, "transaction_id"),
		Amount:        amount,
		Currency:      stringField(receipt, "currency"),
		Status:        mapAppleStatus(notificationType),
		UserID:        stringField(data, "user_id"),
		ItemID:        stringField(receipt, "product_id"),
		Metadata: map[string]any{
			"notification_type":       notificationType,
			"product_id":              stringField(receipt, "product_id"),
			"original_transaction_id": stringField(receipt, "original_transaction_id"),
			"environment":             stringField(data, "environment"),
			"auto_renew_status":       stringField(data, "auto_renew_status"),
		},
	}, nil
}

func mapAppleStatus(notificationType string) Status {
	switch notificationType {
	case "INITIAL_BUY", "DID_RENEW", "INTERACTIVE_RENEWAL":
		return StatusPaid
	case "CANCEL",
		"DID_CHANGE_RENEWAL_PREF",
		"DID_CHANGE_RENEWAL_STATUS",
		"PRICE_INCREASE_CONSENT",
		"REFUND",
		"REVOKE",
		"CONSUMPTION_REQUEST":
		return StatusSentToProcessor
	case "DID_FAIL_TO_RENEW":
		return StatusReceived
	default:
		return StatusReceived
	}
}
