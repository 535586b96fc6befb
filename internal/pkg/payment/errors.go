package payment

import (
	"fmt"

	"github.com/nexpay/payhook/internal/pkg/webhook"
)

// ClassificationUnknownError means no catalog collection recognizes the item
// name carried by an event. This is a configuration problem, not a client
// error; the request must fail rather than guess a purchase type.
type ClassificationUnknownError struct {
	ItemName string
}

func (e *ClassificationUnknownError) Error() string {
	return fmt.Sprintf("item %q is not present in any catalog collection", e.ItemName)
}

// ProviderNotEnabledError rejects dispatch for providers absent from the
// enabled-provider allowlist.
type ProviderNotEnabledError struct {
	Provider webhook.Provider
}

func (e *ProviderNotEnabledError) Error() string {
	return fmt.Sprintf("provider %s is not enabled", e.Provider)
}

// HandlerNotFoundError means no handler is registered for a
// (purchase type, category) pair.
type HandlerNotFoundError struct {
	ItemType ItemType
	Category Category
}

func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("no handler registered for %s/%s", e.ItemType, e.Category)
}

// PaymentProcessingError wraps a handler failure while crediting a purchase.
// It must surface to the caller so the provider redelivers.
type PaymentProcessingError struct {
	Err error
}

func (e *PaymentProcessingError) Error() string {
	return fmt.Sprintf("payment processing failed: %v", e.Err)
}

func (e *PaymentProcessingError) Unwrap() error { return e.Err }
