package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/matiuskuma2/SMG-sub004/app/models"
	"gorm.io/gorm"
)

// CheckoutOutcome reports what a checkout-completed delivery did.
type CheckoutOutcome struct {
	// Ignored is true for deliberate no-ops: subscription-mode sessions and
	// sessions belonging to a different product flow. The gateway is still
	// acknowledged with success so it stops retrying.
	Ignored       bool
	IgnoredReason string

	// Fresh is false when the delivery's payment reference matched the one
	// already persisted, i.e. a replay of an already-reconciled payment.
	Fresh bool

	Applied       []Category
	Failed        []Category
	Notifications []string
}

// ProcessCheckoutCompleted applies one verified checkout-completed event:
// classifies it fresh/replay against the stored payment reference, upserts
// each purchased attendance category, replaces question answers, and on
// fresh deliveries only dispatches notifications.
func (s *Service) ProcessCheckoutCompleted(ctx context.Context, sess *CheckoutSession) (*CheckoutOutcome, error) {
	if sess == nil {
		return nil, errors.New("checkout session is nil")
	}

	// Recurring-subscription checkouts are owned by the sibling billing flow.
	// Acknowledge so the gateway never retries this handler for them.
	if sess.Mode == checkoutModeSubscription {
		return &CheckoutOutcome{Ignored: true, IgnoredReason: "subscription_mode"}, nil
	}

	intent, err := ParseCheckoutIntent(sess)
	if err != nil {
		return nil, err
	}
	if intent == nil {
		// No event reference: a generic payment link or another product flow.
		return &CheckoutOutcome{Ignored: true, IgnoredReason: "no_event_reference"}, nil
	}

	// Idempotency check. Must read state as it existed before this
	// delivery's own writes: the gathering row is the one category that
	// carries the payment reference.
	fresh, err := s.classifyDelivery(ctx, intent)
	if err != nil {
		return nil, fmt.Errorf("classify delivery: %w", err)
	}

	outcome := &CheckoutOutcome{Fresh: fresh}
	s.reconcileAttendance(ctx, intent, outcome)

	if len(outcome.Applied) == 0 && len(outcome.Failed) > 0 {
		// Nothing stuck; let the gateway retry the whole delivery.
		return outcome, fmt.Errorf("all %d attendance upserts failed for event %d user %d",
			len(outcome.Failed), intent.EventID, intent.UserID)
	}

	// Answers are replaced on every delivery, fresh or replay: a user may
	// have corrected an answer between retries and re-writing identical
	// answers is harmless.
	if len(intent.Answers) > 0 {
		if err := s.repo.ReplaceQuestionAnswers(ctx, intent.UserID, intent.Answers); err != nil {
			log.Errorf("[Payment] Replacing question answers for user %d failed: %v", intent.UserID, err)
		}
	}

	if fresh {
		s.dispatchNotifications(ctx, intent, outcome)
	}

	return outcome, nil
}

// classifyDelivery compares the inbound payment reference with the one
// stored on the active gathering attendance row. Equal means replay; a
// different or absent reference means fresh.
func (s *Service) classifyDelivery(ctx context.Context, intent *CheckoutIntent) (bool, error) {
	prior, err := s.repo.GetActiveGatheringAttendance(ctx, intent.EventID, intent.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, err
	}
	if prior.PaymentReference == "" {
		return true, nil
	}
	return prior.PaymentReference != intent.PaymentReference, nil
}

// reconcileAttendance upserts one row per purchased category. A failure in
// one category must not prevent attempting the others; each result is
// recorded independently.
func (s *Service) reconcileAttendance(ctx context.Context, intent *CheckoutIntent, outcome *CheckoutOutcome) {
	for _, category := range intent.Categories {
		var err error
		switch category {
		case CategoryEvent:
			err = s.repo.UpsertEventAttendance(ctx, &models.EventAttendance{
				EventID:  intent.EventID,
				UserID:   intent.UserID,
				IsOnline: intent.IsOnline,
			})
		case CategoryGathering:
			paidAt := intent.PaidAt
			err = s.repo.UpsertGatheringAttendance(ctx, &models.GatheringAttendance{
				EventID:          intent.EventID,
				UserID:           intent.UserID,
				PaymentReference: intent.PaymentReference,
				PaymentStatus:    intent.PaymentStatus,
				Amount:           intent.Amount,
				PaidAt:           &paidAt,
			})
		case CategoryConsultation:
			err = s.repo.UpsertConsultationAttendance(ctx, &models.ConsultationAttendance{
				EventID: intent.EventID,
				UserID:  intent.UserID,
			})
		}

		if err != nil {
			log.Errorf("[Payment] Upsert %s attendance (event %d, user %d) failed: %v",
				category, intent.EventID, intent.UserID, err)
			outcome.Failed = append(outcome.Failed, category)
			continue
		}
		outcome.Applied = append(outcome.Applied, category)
	}
}
