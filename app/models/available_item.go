package models

import "time"

const (
	ItemTypeOneTime      = "one_time_payment"
	ItemTypeSubscription = "subscription"
	ItemTypeUnknown      = "unknown"
)

// AvailableItem is a catalog entry. The webhook pipeline only reads this
// table: ItemName is the key purchase-type classification works on.
type AvailableItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ItemID       string    `gorm:"type:varchar(191);not null;index:ux_available_items_key,unique,priority:3" json:"item_id"`
	ItemName     string    `gorm:"type:varchar(191);not null;index" json:"item_name"`
	ItemPrice    float64   `gorm:"not null;default:0" json:"item_price"`
	ItemCurrency string    `gorm:"type:varchar(3);not null;default:'USD'" json:"item_currency"`
	ItemType     string    `gorm:"type:varchar(32);not null;index:ux_available_items_key,unique,priority:1" json:"item_type"`
	ItemCategory string    `gorm:"type:varchar(64);not null;index:ux_available_items_key,unique,priority:2;index" json:"item_category"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
