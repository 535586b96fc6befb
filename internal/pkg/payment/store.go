package payment

import (
	"time"

	"github.com/nexpay/payhook/app/models"
	"github.com/nexpay/payhook/internal/pkg/webhook"
)

// PurchaseDetail is the record written when a webhook first arrives for a
// transaction.
type PurchaseDetail struct {
	PurchaseID string
	ItemID     string
	UserID     string
	TimeBought time.Time
	Status     webhook.Status
}

// Store is the external item-catalog/order collaborator. Implementations must
// guarantee at-least atomic per-purchase-id status updates;
// LogWebhookReceived has insert-if-absent semantics so concurrent deliveries
// of the same transaction are tolerated.
type Store interface {
	GetItem(itemType ItemType, category Category, itemID string) (*models.AvailableItem, error)
	GetAllItems(itemType ItemType) ([]models.AvailableItem, error)
	// HasItem looks an item up by name across all collections; a nil item
	// means no collection recognizes the name.
	HasItem(name string) (*models.AvailableItem, error)
	LogWebhookReceived(detail PurchaseDetail) error
	ChangeOrderStatus(purchaseID string, status webhook.Status) error
	GetOrdersByUser(userID string) ([]models.PurchaseOrder, error)
}
