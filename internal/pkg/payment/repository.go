package payment

import (
	"errors"

	"github.com/nexpay/payhook/app/models"
	"github.com/nexpay/payhook/internal/pkg/webhook"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a catalog/order store backed by GORM.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) GetItem(itemType ItemType, category Category, itemID string) (*models.AvailableItem, error) {
	var item models.AvailableItem
	err := s.db.
		Where("item_type = ? AND item_category = ? AND item_id = ?", string(itemType), string(category), itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *gormStore) GetAllItems(itemType ItemType) ([]models.AvailableItem, error) {
	var items []models.AvailableItem
	err := s.db.Where("item_type = ?", string(itemType)).Find(&items).Error
	return items, err
}

func (s *gormStore) HasItem(name string) (*models.AvailableItem, error) {
	var item models.AvailableItem
	err := s.db.Where("item_name = ? OR item_id = ?", name, name).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *gormStore) LogWebhookReceived(detail PurchaseDetail) error {
	status := detail.Status
	if !status.Valid() {
		status = webhook.StatusReceived
	}
	order := &models.PurchaseOrder{
		PurchaseID: detail.PurchaseID,
		ItemID:     detail.ItemID,
		UserID:     detail.UserID,
		TimeBought: detail.TimeBought,
		Status:     string(status),
	}
	// Redeliveries of the same purchase must not create duplicate rows.
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "purchase_id"}},
		DoNothing: true,
	}).Create(order).Error
}

func (s *gormStore) ChangeOrderStatus(purchaseID string, status webhook.Status) error {
	// Updating to the status a row already has is a no-op by construction.
	return s.db.Model(&models.PurchaseOrder{}).
		Where("purchase_id = ? AND status <> ?", purchaseID, string(status)).
		Update("status", string(status)).Error
}

func (s *gormStore) GetOrdersByUser(userID string) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := s.db.Where("user_id = ?", userID).Order("time_bought DESC").Find(&orders).Error
	return orders, err
}
