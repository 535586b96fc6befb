package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/nexpay/payhook/internal/pkg/payment"
	"github.com/nexpay/payhook/internal/pkg/webhook"
)

var validate = validator.New()

// CreditorRequest is the internal crediting payload. It bypasses provider
// verification and parsing; the caller asserts the purchase already happened.
type CreditorRequest struct {
	UserID          string  `json:"user_id" validate:"required"`
	ItemID          string  `json:"item_id" validate:"required"`
	ItemCategory    string  `json:"item_category" validate:"required"`
	PaymentProvider string  `json:"payment_provider" validate:"required"`
	PaymentType     string  `json:"payment_type" validate:"required,oneof=one_time_payment subscription"`
	PurchaseID      string  `json:"purchase_id"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
}

// HandleCreditorTransaction credits a purchase directly, minting a purchase
// id when the caller supplies none. Guarded by the internal API key.
func HandleCreditorTransaction(c *fiber.Ctx) error {
	var req CreditorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}

	provider, ok := webhook.ParseProvider(req.PaymentProvider)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "unknown payment provider"})
	}

	registry := payment.DefaultRegistry()
	if registry == nil {
		log.Error("payment pipeline is not configured")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "service unavailable"})
	}

	purchaseID := req.PurchaseID
	if purchaseID == "" {
		purchaseID = uuid.NewString()
	}
	ev := &webhook.Event{
		TransactionID: purchaseID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Status:        webhook.StatusPaid,
		UserID:        req.UserID,
		ItemID:        req.ItemID,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	itemType := payment.ParseItemType(req.PaymentType)
	err := registry.Dispatcher().Dispatch(ctx, provider, itemType, payment.Category(req.ItemCategory), ev, nil)
	if err != nil {
		var notEnabled *payment.ProviderNotEnabledError
		var noHandler *payment.HandlerNotFoundError
		switch {
		case errors.As(err, &notEnabled):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"status": "error", "message": err.Error()})
		case errors.As(err, &noHandler):
			// Misconfiguration, same as on the webhook path.
			log.Errorf("creditor misconfigured: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
		default:
			log.Errorf("creditor dispatch failed for purchase %s: %v", purchaseID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "crediting failed"})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "purchase_id": purchaseID})
}
