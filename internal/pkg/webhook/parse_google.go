package webhook

import "encoding/base64"

// GoogleParser normalizes Google Play real-time developer notifications. The
// RTDN envelope wraps the notification in message.data as base64 JSON; bare
// notification objects are accepted too.
type GoogleParser struct{}

func (GoogleParser) Parse(raw []byte) (*Event, error) {
	data, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	notification, err := googleNotification(data)
	if err != nil {
		return nil, err
	}

	purchase := childObject(notification, "subscriptionNotification")
	isSubscription := len(purchase) > 0
	if !isSubscription {
		purchase = childObject(notification, "oneTimeProductNotification")
	}

	if missing := missingFields(purchase, "orderId", "priceAmountMicros", "priceCurrencyCode", "notificationType"); len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	// priceAmountMicros is in micro-units of the currency.
	micros, _ := floatField(purchase, "priceAmountMicros")

	itemID := stringField(purchase, "subscriptionId")
	if itemID == "" {
		itemID = stringField(purchase, "productId")
	}

	return &Event{
		TransactionID: stringField(purchase, "orderId"),
		Amount:        micros / 1_000_000,
		Currency:      stringField(purchase, "priceCurrencyCode"),
		Status:        mapGoogleStatus(stringField(purchase, "notificationType")),
		UserID:        stringField(notification, "userId"),
		ItemID:        itemID,
		Metadata: map[string]any{
			"package_name":    stringField(notification, "packageName"),
			"product_id":      stringField(purchase, "productId"),
			"purchase_token":  stringField(purchase, "purchaseToken"),
			"subscription_id": stringField(purchase, "subscriptionId"),
			"is_subscription": isSubscription,
		},
	}, nil
}

// googleNotification unwraps the Pub/Sub push envelope when present.
func googleNotification(data map[string]any) (map[string]any, error) {
	message, ok := data["message"].(map[string]any)
	if !ok {
		return data, nil
	}
	switch payload := message["data"].(type) {
	case map[string]any:
		return payload, nil
	case string:
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, &MalformedPayloadError{Err: err}
		}
		return decodeObject(decoded)
	default:
		return nil, &MissingFieldError{Fields: []string{"message.data"}}
	}
}

func mapGoogleStatus(notificationType string) Status {
	switch notificationType {
	case "SUBSCRIPTION_PURCHASED",
		"SUBSCRIPTION_RENEWED",
		"SUBSCRIPTION_RESTARTED",
		"ONE_TIME_PRODUCT_PURCHASED":
		return StatusPaid
	case "SUBSCRIPTION_CANCELED",
		"SUBSCRIPTION_ON_HOLD",
		"SUBSCRIPTION_IN_GRACE_PERIOD",
		"SUBSCRIPTION_PRICE_CHANGE_CONFIRMED",
		"SUBSCRIPTION_DEFERRED",
		"SUBSCRIPTION_PAUSED",
		"SUBSCRIPTION_PAUSE_SCHEDULE_CHANGED",
		"SUBSCRIPTION_EXPIRED",
		"ONE_TIME_PRODUCT_CANCELED":
		return StatusSentToProcessor
	case "SUBSCRIPTION_REVOKED":
		return StatusReceived
	default:
		return StatusReceived
	}
}
