package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/matiuskuma2/SMG-sub004/app/models"
	"github.com/matiuskuma2/SMG-sub004/internal/pkg/mailqueue"
	"gorm.io/gorm"
)

// MailDispatcher hands outbound mail to a best-effort delivery mechanism.
type MailDispatcher interface {
	EnqueueMail(to, subject, textBody, htmlBody string) error
}

// Service is the payment-webhook reconciliation engine. It applies verified
// gateway events to attendance and membership state exactly once from the
// business perspective, despite at-least-once webhook delivery.
type Service struct {
	repo      Repository
	customers CustomerResolver
	mailer    MailDispatcher
}

// NewService creates a payment service from injected collaborators.
func NewService(repo Repository, customers CustomerResolver, mailer MailDispatcher) *Service {
	return &Service{repo: repo, customers: customers, mailer: mailer}
}

// NewServiceFromDB creates a payment service with production wiring: GORM
// repository, gateway-backed customer lookup, Redis mail queue.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), NewStripeCustomerResolver(), mailqueue.GetQueue())
}

// WebhookLogInput is the normalized input for webhook envelope persistence.
type WebhookLogInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// RecordWebhookEvent persists webhook payloads idempotently. The boolean
// result is false when this exact envelope was seen before.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookLogInput) (bool, *models.PaymentWebhookLog, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	entry := &models.PaymentWebhookLog{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookLogIfNotExists(ctx, entry)
}

// MarkWebhookProcessed marks an envelope as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookLogID uint, processingErr error) error {
	if webhookLogID == 0 {
		return errors.New("webhook_log_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(ctx, webhookLogID, errMsg)
}
