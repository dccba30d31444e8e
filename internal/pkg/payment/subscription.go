package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/matiuskuma2/SMG-sub004/app/models"
	"gorm.io/gorm"
)

// MembershipState is a user's standing in the unpaid sentinel group.
type MembershipState string

const (
	StateMember    MembershipState = "member"
	StateNotMember MembershipState = "not-member"
)

// InvoiceOutcome reports what an invoice delivery did.
type InvoiceOutcome struct {
	Ignored       bool
	IgnoredReason string
	UserID        uint
	State         MembershipState
	Changed       bool
}

// ProcessInvoiceEvent reconciles a user's membership in the "unpaid" group
// from one subscription invoice outcome: a failed invoice ensures active
// membership, a succeeded one ensures the membership is soft-deleted. Both
// directions are idempotent so reordered or duplicated deliveries converge.
func (s *Service) ProcessInvoiceEvent(ctx context.Context, inv *Invoice, paymentFailed bool) (*InvoiceOutcome, error) {
	if inv == nil {
		return nil, errors.New("invoice is nil")
	}

	// Non-subscription invoices (one-off charges) never drive membership.
	if strings.TrimSpace(inv.Subscription) == "" {
		return &InvoiceOutcome{Ignored: true, IgnoredReason: "no_subscription"}, nil
	}

	customerID := strings.TrimSpace(inv.Customer)
	if customerID == "" {
		return &InvoiceOutcome{Ignored: true, IgnoredReason: "no_customer"}, nil
	}

	// Resolve through the gateway, never from payload fields.
	info, err := s.customers.Resolve(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("resolve customer %s: %w", customerID, err)
	}
	if info == nil || info.Deleted {
		log.Warnf("[Payment] Invoice %s references unknown or deleted customer %s, acknowledging", inv.ID, customerID)
		return &InvoiceOutcome{Ignored: true, IgnoredReason: "customer_unresolvable"}, nil
	}

	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(info.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Payment] No portal user for customer %s (%s), acknowledging", customerID, info.Email)
			return &InvoiceOutcome{Ignored: true, IgnoredReason: "user_unresolvable"}, nil
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	group, err := s.repo.GetGroupByName(ctx, models.GroupUnpaid)
	if err != nil {
		return nil, fmt.Errorf("resolve group %q: %w", models.GroupUnpaid, err)
	}

	if paymentFailed {
		return s.ensureUnpaidMember(ctx, group.ID, user.ID)
	}
	return s.ensureNotUnpaidMember(ctx, group.ID, user.ID)
}

// ensureUnpaidMember is the member-on-failure transition. The existing
// active membership is checked first so a repeated failure stays a no-op
// instead of inserting a duplicate active row.
func (s *Service) ensureUnpaidMember(ctx context.Context, groupID, userID uint) (*InvoiceOutcome, error) {
	_, err := s.repo.GetActiveGroupMembership(ctx, groupID, userID)
	if err == nil {
		return &InvoiceOutcome{UserID: userID, State: StateMember, Changed: false}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check membership: %w", err)
	}

	if err := s.repo.UpsertGroupMembership(ctx, &models.GroupMembership{
		GroupID: groupID,
		UserID:  userID,
	}); err != nil {
		return nil, fmt.Errorf("upsert membership: %w", err)
	}
	log.Infof("[Payment] User %d added to unpaid group after failed invoice", userID)
	return &InvoiceOutcome{UserID: userID, State: StateMember, Changed: true}, nil
}

// ensureNotUnpaidMember is the not-member-on-success transition. Soft delete
// tolerates "nothing to delete".
func (s *Service) ensureNotUnpaidMember(ctx context.Context, groupID, userID uint) (*InvoiceOutcome, error) {
	_, err := s.repo.GetActiveGroupMembership(ctx, groupID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &InvoiceOutcome{UserID: userID, State: StateNotMember, Changed: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}

	if err := s.repo.SoftDeleteGroupMembership(ctx, groupID, userID); err != nil {
		return nil, fmt.Errorf("soft-delete membership: %w", err)
	}
	log.Infof("[Payment] User %d removed from unpaid group after successful invoice", userID)
	return &InvoiceOutcome{UserID: userID, State: StateNotMember, Changed: true}, nil
}
