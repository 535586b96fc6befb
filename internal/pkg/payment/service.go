package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/nexpay/payhook/app/models"
	"github.com/nexpay/payhook/internal/pkg/webhook"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        webhook.Provider
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// EventLog persists raw webhook deliveries idempotently so redeliveries can
// be detected and audited.
type EventLog struct {
	db *gorm.DB
}

// NewEventLog creates an event log backed by GORM.
func NewEventLog(db *gorm.DB) *EventLog {
	return &EventLog{db: db}
}

// Record persists a webhook payload. When the provider supplies no event id,
// a payload hash stands in so identical redeliveries still deduplicate.
// Returns created=false for a delivery already on record.
func (l *EventLog) Record(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEventLog, error) {
	if in.Provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEventLog{
		Provider:        string(in.Provider),
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	tx := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEventLog
	if err := l.db.WithContext(ctx).Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

// MarkProcessed marks an event as processed, storing the signature verdict
// and an optional error.
func (l *EventLog) MarkProcessed(ctx context.Context, eventLogID uint, signatureValid bool, processingErr error) error {
	if eventLogID == 0 {
		return errors.New("event_log_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": errMsg,
		"signature_valid":  signatureValid,
	}
	return l.db.WithContext(ctx).Model(&models.WebhookEventLog{}).Where("id = ?", eventLogID).Updates(updates).Error
}
