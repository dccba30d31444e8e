package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/matiuskuma2/SMG-sub004/app/models"
	"github.com/matiuskuma2/SMG-sub004/internal/pkg/database"
	"github.com/matiuskuma2/SMG-sub004/internal/pkg/env"
	"github.com/matiuskuma2/SMG-sub004/internal/pkg/payment"
)

const webhookTimeout = 15 * time.Second

// Gateway event types handled by the two webhook endpoints.
const (
	eventCheckoutCompleted = "checkout.session.completed"
	eventInvoiceFailed     = "invoice.payment_failed"
	eventInvoiceSucceeded  = "invoice.payment_succeeded"
	eventInvoicePaid       = "invoice.paid"
)

// HandleCheckoutWebhook receives checkout-completed events and reconciles
// attendance. Any outcome the gateway should not retry is acknowledged with
// 200 {"received": true}.
func HandleCheckoutWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	event, err := payment.VerifyWebhook(rawBody, signature, secret)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
	}

	svc := payment.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	created, stored, err := svc.RecordWebhookEvent(ctx, payment.WebhookLogInput{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(rawBody),
		SignatureValid:  true,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	// Only a cleanly processed envelope is a true duplicate. A logged envelope
	// whose prior attempt failed (and was answered 5xx) must run the
	// reconcilers again on the gateway's retry.
	if !created && stored.ProcessedCleanly() {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
	}

	if string(event.Type) != eventCheckoutCompleted {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "ignored": true})
	}

	var sess payment.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	outcome, procErr := svc.ProcessCheckoutCompleted(ctx, &sess)
	_ = svc.MarkWebhookProcessed(ctx, stored.ID, procErr)
	if procErr != nil {
		if errors.Is(procErr, payment.ErrMissingActingUser) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing_user_metadata"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reconciliation_failed"})
	}
	if outcome.Ignored {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "ignored": true})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

// HandleInvoiceWebhook receives subscription invoice outcomes and reconciles
// membership in the unpaid group.
func HandleInvoiceWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	event, err := payment.VerifyWebhook(rawBody, signature, secret)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
	}

	svc := payment.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	created, stored, err := svc.RecordWebhookEvent(ctx, payment.WebhookLogInput{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(rawBody),
		SignatureValid:  true,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created && stored.ProcessedCleanly() {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
	}

	failed, handled := classifyInvoiceEvent(string(event.Type))
	if !handled {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "ignored": true})
	}

	var inv payment.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	outcome, procErr := svc.ProcessInvoiceEvent(ctx, &inv, failed)
	_ = svc.MarkWebhookProcessed(ctx, stored.ID, procErr)
	if procErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reconciliation_failed"})
	}
	if outcome.Ignored {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "ignored": true})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

// classifyInvoiceEvent maps an event type to (paymentFailed, handled).
func classifyInvoiceEvent(eventType string) (bool, bool) {
	switch eventType {
	case eventInvoiceFailed:
		return true, true
	case eventInvoiceSucceeded, eventInvoicePaid:
		return false, true
	default:
		return false, false
	}
}
