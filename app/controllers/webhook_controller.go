package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/nexpay/payhook/app/models"
	"github.com/nexpay/payhook/internal/pkg/database"
	"github.com/nexpay/payhook/internal/pkg/forwarder"
	"github.com/nexpay/payhook/internal/pkg/payment"
	"github.com/nexpay/payhook/internal/pkg/webhook"
)

// eventLogger is the slice of the payment event log this handler needs.
type eventLogger interface {
	Record(ctx context.Context, in payment.WebhookEventInput) (bool, *models.WebhookEventLog, error)
	MarkProcessed(ctx context.Context, eventLogID uint, signatureValid bool, processingErr error) error
}

var newEventLog = func() eventLogger { return payment.NewEventLog(database.GetDB()) }

// HandleProviderWebhook ingests one webhook delivery for the provider named
// in the path, runs it through the processing pipeline and maps pipeline
// failures to HTTP statuses. Providers retry on non-2xx, so anything that
// must be redelivered has to fail here.
func HandleProviderWebhook(c *fiber.Ctx) error {
	provider, ok := webhook.ParseProvider(c.Params("provider"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "unknown provider"})
	}

	registry := payment.DefaultRegistry()
	if registry == nil {
		log.Error("webhook pipeline is not configured")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "service unavailable"})
	}

	rawBody := append([]byte(nil), c.BodyRaw()...)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	eventLog := newEventLog()
	created, stored, err := eventLog.Record(ctx, payment.WebhookEventInput{
		Provider:        provider,
		ProviderEventID: firstHeaderValue(c, "X-Webhook-Id", "Paypal-Transmission-Id", "X-Cc-Webhook-Id"),
		EventType:       strings.TrimSpace(c.Get("X-Webhook-Event")),
		PayloadJSON:     string(rawBody),
	})
	if err != nil {
		log.Errorf("recording %s webhook failed: %v", provider, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "webhook persist failed"})
	}
	// Only a delivery that already processed cleanly short-circuits. A known
	// payload whose last attempt failed (bad signature, handler error, dead
	// forwarder) runs the pipeline again so provider redelivery can retry;
	// the store writes are idempotent.
	if !created && eventProcessed(stored) {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "duplicate": true})
	}

	header := func(name string) string { return c.Get(name) }
	_, pipeErr := registry.HandleWebhook(ctx, provider, rawBody, header)
	if err := eventLog.MarkProcessed(ctx, stored.ID, signatureVerdict(pipeErr), pipeErr); err != nil {
		log.Errorf("marking %s webhook processed failed: %v", provider, err)
	}
	if pipeErr != nil {
		return webhookErrorResponse(c, provider, pipeErr)
	}

	log.Infof("processed %s webhook from %s", provider, clientIP(c))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success"})
}

// eventProcessed reports whether a stored delivery completed without error.
func eventProcessed(ev *models.WebhookEventLog) bool {
	return ev != nil && ev.ProcessedAt != nil && ev.ProcessingError == ""
}

// signatureVerdict derives the signature_valid flag from the pipeline
// outcome: false when verification failed, and also when it never ran.
func signatureVerdict(pipeErr error) bool {
	if pipeErr == nil {
		return true
	}
	if errors.Is(pipeErr, webhook.ErrInvalidSignature) {
		return false
	}
	var notEnabled *payment.ProviderNotEnabledError
	return !errors.As(pipeErr, &notEnabled)
}

func webhookErrorResponse(c *fiber.Ctx, provider webhook.Provider, err error) error {
	var (
		malformed    *webhook.MalformedPayloadError
		missing      *webhook.MissingFieldError
		notEnabled   *payment.ProviderNotEnabledError
		unclassified *payment.ClassificationUnknownError
		noHandler    *payment.HandlerNotFoundError
		processing   *payment.PaymentProcessingError
		forwarding   *forwarder.ForwardError
	)
	switch {
	case errors.Is(err, webhook.ErrInvalidSignature):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid signature"})
	case errors.As(err, &malformed), errors.As(err, &missing):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": err.Error()})
	case errors.As(err, &notEnabled):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"status": "error", "message": err.Error()})
	case errors.As(err, &unclassified), errors.As(err, &noHandler):
		log.Errorf("%s webhook misconfigured: %v", provider, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": err.Error()})
	case errors.As(err, &processing), errors.As(err, &forwarding):
		log.Errorf("%s webhook processing failed: %v", provider, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "event processing failed"})
	default:
		log.Errorf("%s webhook failed: %v", provider, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "internal server error"})
	}
}
