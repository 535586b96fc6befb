package webhook

// WooCommerceParser normalizes WooCommerce order webhooks. The payload is the
// flat order object; the order status doubles as the event discriminator.
type WooCommerceParser struct{}

func (WooCommerceParser) Parse(raw []byte) (*Event, error) {
	data, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	if missing := missingFields(data, "id", "total", "currency"); len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	amount, _ := floatField(data, "total")

	// First line item is the purchased product.
	productID := ""
	if items := childArray(data, "line_items"); len(items) > 0 {
		if first, ok := items[0].(map[string]any); ok {
			productID = stringField(first, "product_id")
		}
	}

	return &Event{
		TransactionID: stringField(data, "id"),
		Amount:        amount,
		Currency:      stringField(data, "currency"),
		Status:        mapWooCommerceStatus(stringField(data, "status")),
		UserID:        stringField(data, "customer_id"),
		ItemID:        productID,
		Metadata: map[string]any{
			"order_key":      stringField(data, "order_key"),
			"order_status":   stringField(data, "status"),
			"payment_method": stringField(data, "payment_method"),
			"created_via":    stringField(data, "created_via"),
		},
	}, nil
}

func mapWooCommerceStatus(orderStatus string) Status {
	switch orderStatus {
	case "completed":
		return StatusPaid
	case "processing":
		return StatusSentToProcessor
	case "pending":
		return StatusReceived
	default:
		return StatusReceived
	}
}
