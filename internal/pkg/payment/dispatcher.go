package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/nexpay/payhook/internal/pkg/forwarder"
	"github.com/nexpay/payhook/internal/pkg/webhook"
)

type handlerKey struct {
	itemType ItemType
	category Category
}

// Handler credits a purchase locally once its event has been verified,
// normalized and classified.
type Handler interface {
	OnPayment(ctx context.Context, ev *webhook.Event) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, ev *webhook.Event) error

func (f HandlerFunc) OnPayment(ctx context.Context, ev *webhook.Event) error {
	return f(ctx, ev)
}

// Dispatcher routes classified events to the handler registered for their
// (purchase type, category) pair and keeps the order ledger current.
type Dispatcher struct {
	store    Store
	enabled  map[webhook.Provider]bool
	handlers map[handlerKey]Handler
}

// NewDispatcher creates a dispatcher with an enabled-provider allowlist.
func NewDispatcher(store Store, enabled []webhook.Provider) *Dispatcher {
	allow := make(map[webhook.Provider]bool, len(enabled))
	for _, p := range enabled {
		allow[p] = true
	}
	return &Dispatcher{
		store:    store,
		enabled:  allow,
		handlers: make(map[handlerKey]Handler),
	}
}

// Register binds a handler to a (purchase type, category) pair. Registering
// the same pair twice is a wiring bug and fails.
func (d *Dispatcher) Register(itemType ItemType, category Category, h Handler) error {
	key := handlerKey{itemType: itemType, category: category}
	if _, exists := d.handlers[key]; exists {
		return fmt.Errorf("handler already registered for %s/%s", itemType, category)
	}
	d.handlers[key] = h
	return nil
}

// Enabled reports whether provider passed the allowlist.
func (d *Dispatcher) Enabled(provider webhook.Provider) bool {
	return d.enabled[provider]
}

// Dispatch records the delivery and either forwards the event or runs the
// local handler for its classification. Forwarding and local handling are
// mutually exclusive: a bound forwarder means no handler runs and no order
// status changes here. On local success the order moves to the event's
// mapped status.
func (d *Dispatcher) Dispatch(ctx context.Context, provider webhook.Provider, itemType ItemType, category Category, ev *webhook.Event, fwd forwarder.Forwarder) error {
	if !d.enabled[provider] {
		return &ProviderNotEnabledError{Provider: provider}
	}

	if err := d.store.LogWebhookReceived(PurchaseDetail{
		PurchaseID: ev.TransactionID,
		ItemID:     ev.ItemID,
		UserID:     ev.UserID,
		TimeBought: time.Now(),
		Status:     webhook.StatusReceived,
	}); err != nil {
		return fmt.Errorf("recording purchase: %w", err)
	}

	if fwd != nil {
		return fwd.Forward(ctx, ev)
	}

	key := handlerKey{itemType: itemType, category: category}
	handler, ok := d.handlers[key]
	if !ok {
		return &HandlerNotFoundError{ItemType: itemType, Category: category}
	}
	if err := handler.OnPayment(ctx, ev); err != nil {
		return &PaymentProcessingError{Err: err}
	}

	if err := d.store.ChangeOrderStatus(ev.TransactionID, ev.Status); err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}
	log.Infof("dispatched %s event %s as %s/%s with status %s", provider, ev.TransactionID, itemType, category, ev.Status)
	return nil
}
