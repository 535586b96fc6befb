package models

import "time"

// PurchaseOrder is one row per purchase attempt. It is created on the first
// webhook receipt for a transaction and status-mutated on every later
// lifecycle transition. Rows are never deleted; an order ends its life as
// "paid" or simply stops receiving events.
type PurchaseOrder struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PurchaseID string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"purchase_id"`
	ItemID     string    `gorm:"type:varchar(191);not null;index" json:"item_id"`
	UserID     string    `gorm:"type:varchar(191);not null;index" json:"user_id"`
	TimeBought time.Time `gorm:"type:timestamp;not null" json:"time_bought"`
	Status     string    `gorm:"type:varchar(32);not null;default:'webhook_received';index" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
