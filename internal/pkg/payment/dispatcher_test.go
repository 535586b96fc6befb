package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexpay/payhook/app/models"
	"github.com/nexpay/payhook/internal/pkg/webhook"
)

// fakeStore is an in-memory Store with the same idempotence guarantees as the
// database-backed one.
type fakeStore struct {
	items        []models.AvailableItem
	orders       map[string]*models.PurchaseOrder
	logCalls     int
	statusWrites int
	failLog      error
}

func newFakeStore(items ...models.AvailableItem) *fakeStore {
	return &fakeStore{
		items:  items,
		orders: make(map[string]*models.PurchaseOrder),
	}
}

func (s *fakeStore) GetItem(itemType ItemType, category Category, itemID string) (*models.AvailableItem, error) {
	for i := range s.items {
		item := &s.items[i]
		if item.ItemType == string(itemType) && item.ItemCategory == string(category) && item.ItemID == itemID {
			return item, nil
		}
	}
	return nil, errors.New("item not found")
}

func (s *fakeStore) GetAllItems(itemType ItemType) ([]models.AvailableItem, error) {
	var out []models.AvailableItem
	for _, item := range s.items {
		if item.ItemType == string(itemType) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *fakeStore) HasItem(name string) (*models.AvailableItem, error) {
	for i := range s.items {
		item := &s.items[i]
		if item.ItemName == name || item.ItemID == name {
			return item, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) LogWebhookReceived(detail PurchaseDetail) error {
	s.logCalls++
	if s.failLog != nil {
		return s.failLog
	}
	if _, exists := s.orders[detail.PurchaseID]; exists {
		return nil
	}
	status := detail.Status
	if !status.Valid() {
		status = webhook.StatusReceived
	}
	s.orders[detail.PurchaseID] = &models.PurchaseOrder{
		PurchaseID: detail.PurchaseID,
		ItemID:     detail.ItemID,
		UserID:     detail.UserID,
		TimeBought: detail.TimeBought,
		Status:     string(status),
	}
	return nil
}

func (s *fakeStore) ChangeOrderStatus(purchaseID string, status webhook.Status) error {
	order, ok := s.orders[purchaseID]
	if !ok {
		return nil
	}
	if order.Status == string(status) {
		return nil
	}
	order.Status = string(status)
	s.statusWrites++
	return nil
}

func (s *fakeStore) GetOrdersByUser(userID string) ([]models.PurchaseOrder, error) {
	var out []models.PurchaseOrder
	for _, order := range s.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func paidEvent(transactionID string) *webhook.Event {
	return &webhook.Event{
		TransactionID: transactionID,
		Amount:        10.99,
		Currency:      "USD",
		Status:        webhook.StatusPaid,
		UserID:        "user123",
		ItemID:        "coins_100",
	}
}

func TestDispatcherRejectsDuplicateRegistration(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(newFakeStore(), webhook.AllProviders)
	noop := HandlerFunc(func(ctx context.Context, ev *webhook.Event) error { return nil })

	require.NoError(t, d.Register(ItemTypeOneTime, "shop", noop))
	assert.Error(t, d.Register(ItemTypeOneTime, "shop", noop))
	// A different category under the same type is fine.
	assert.NoError(t, d.Register(ItemTypeOneTime, "addons", noop))
}

func TestDispatcherRejectsDisabledProvider(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	d := NewDispatcher(store, []webhook.Provider{webhook.ProviderCoinbase})

	err := d.Dispatch(context.Background(), webhook.ProviderPayPal, ItemTypeOneTime, "shop", paidEvent("tx1"), nil)
	var notEnabled *ProviderNotEnabledError
	require.ErrorAs(t, err, &notEnabled)
	assert.Equal(t, webhook.ProviderPayPal, notEnabled.Provider)
	assert.Zero(t, store.logCalls)
}

func TestDispatcherHandlerNotFound(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	d := NewDispatcher(store, webhook.AllProviders)

	err := d.Dispatch(context.Background(), webhook.ProviderCoinbase, ItemTypeOneTime, "shop", paidEvent("tx1"), nil)
	var notFound *HandlerNotFoundError
	require.ErrorAs(t, err, &notFound)
	// The delivery is still recorded so redelivery stays idempotent.
	assert.Equal(t, 1, store.logCalls)
}

func TestDispatcherRunsHandlerAndUpdatesStatus(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	d := NewDispatcher(store, webhook.AllProviders)

	var handled *webhook.Event
	require.NoError(t, d.Register(ItemTypeOneTime, "shop", HandlerFunc(func(ctx context.Context, ev *webhook.Event) error {
		handled = ev
		return nil
	})))

	ev := paidEvent("tx1")
	require.NoError(t, d.Dispatch(context.Background(), webhook.ProviderCoinbase, ItemTypeOneTime, "shop", ev, nil))

	assert.Same(t, ev, handled)
	assert.Equal(t, string(webhook.StatusPaid), store.orders["tx1"].Status)
}

func TestDispatcherKeepsNonPaidStatus(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	d := NewDispatcher(store, webhook.AllProviders)
	require.NoError(t, d.Register(ItemTypeSubscription, "shop", HandlerFunc(func(ctx context.Context, ev *webhook.Event) error {
		return nil
	})))

	ev := paidEvent("tx-cancel")
	ev.Status = webhook.StatusSentToProcessor
	require.NoError(t, d.Dispatch(context.Background(), webhook.ProviderPayPal, ItemTypeSubscription, "shop", ev, nil))

	// A cancellation event must never leave the order marked paid.
	assert.Equal(t, string(webhook.StatusSentToProcessor), store.orders["tx-cancel"].Status)
}

func TestDispatcherWrapsHandlerFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	d := NewDispatcher(store, webhook.AllProviders)
	boom := errors.New("credit ledger unavailable")
	require.NoError(t, d.Register(ItemTypeOneTime, "shop", HandlerFunc(func(ctx context.Context, ev *webhook.Event) error {
		return boom
	})))

	err := d.Dispatch(context.Background(), webhook.ProviderCoinbase, ItemTypeOneTime, "shop", paidEvent("tx1"), nil)
	var processing *PaymentProcessingError
	require.ErrorAs(t, err, &processing)
	assert.ErrorIs(t, err, boom)
	// Status must stay at received so the provider's redelivery can retry.
	assert.Equal(t, string(webhook.StatusReceived), store.orders["tx1"].Status)
}

type countingForwarder struct {
	calls int
	err   error
}

func (f *countingForwarder) Forward(ctx context.Context, ev *webhook.Event) error {
	f.calls++
	return f.err
}

func TestDispatcherForwardingSkipsLocalHandling(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	d := NewDispatcher(store, webhook.AllProviders)
	handlerCalls := 0
	require.NoError(t, d.Register(ItemTypeOneTime, "shop", HandlerFunc(func(ctx context.Context, ev *webhook.Event) error {
		handlerCalls++
		return nil
	})))

	fwd := &countingForwarder{}
	require.NoError(t, d.Dispatch(context.Background(), webhook.ProviderCoinbase, ItemTypeOneTime, "shop", paidEvent("tx1"), fwd))

	assert.Equal(t, 1, fwd.calls)
	assert.Zero(t, handlerCalls)
	// Forwarded events leave the order at received; the consumer owns the rest
	// of the lifecycle.
	assert.Equal(t, string(webhook.StatusReceived), store.orders["tx1"].Status)
}

func TestDispatcherIdempotentRedelivery(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	d := NewDispatcher(store, webhook.AllProviders)
	require.NoError(t, d.Register(ItemTypeOneTime, "shop", HandlerFunc(func(ctx context.Context, ev *webhook.Event) error {
		return nil
	})))

	ev := paidEvent("tx1")
	require.NoError(t, d.Dispatch(context.Background(), webhook.ProviderCoinbase, ItemTypeOneTime, "shop", ev, nil))
	require.NoError(t, d.Dispatch(context.Background(), webhook.ProviderCoinbase, ItemTypeOneTime, "shop", ev, nil))

	assert.Len(t, store.orders, 1)
	// Second paid update is a no-op.
	assert.Equal(t, 1, store.statusWrites)
}
