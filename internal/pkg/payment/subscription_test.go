package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matiuskuma2/SMG-sub004/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unpaidGroupID uint = 99

func newInvoiceService(repo *fakeRepo, resolver *fakeResolver) *Service {
	return NewService(repo, resolver, &fakeMailer{})
}

func seedInvoiceFixtures(repo *fakeRepo) *fakeResolver {
	repo.groups[models.GroupUnpaid] = &models.Group{ID: unpaidGroupID, Name: models.GroupUnpaid}
	repo.users[7] = &models.User{ID: 7, Email: "member@example.com"}
	return &fakeResolver{customers: map[string]*CustomerInfo{
		"cus_123": {ID: "cus_123", Email: "Member@Example.com"},
	}}
}

func subscriptionInvoice() *Invoice {
	return &Invoice{
		ID:           "in_test_1",
		Customer:     "cus_123",
		Subscription: "sub_test_1",
		AmountDue:    900,
		Status:       "open",
	}
}

func TestProcessInvoiceEventFailureAddsMember(t *testing.T) {
	repo := newFakeRepo()
	resolver := seedInvoiceFixtures(repo)
	svc := newInvoiceService(repo, resolver)

	outcome, err := svc.ProcessInvoiceEvent(context.Background(), subscriptionInvoice(), true)
	require.NoError(t, err)
	assert.False(t, outcome.Ignored)
	assert.Equal(t, uint(7), outcome.UserID)
	assert.Equal(t, StateMember, outcome.State)
	assert.True(t, outcome.Changed)

	_, err = repo.GetActiveGroupMembership(context.Background(), unpaidGroupID, 7)
	assert.NoError(t, err)
}

func TestProcessInvoiceEventRepeatedFailureIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	resolver := seedInvoiceFixtures(repo)
	svc := newInvoiceService(repo, resolver)
	ctx := context.Background()

	_, err := svc.ProcessInvoiceEvent(ctx, subscriptionInvoice(), true)
	require.NoError(t, err)

	outcome, err := svc.ProcessInvoiceEvent(ctx, subscriptionInvoice(), true)
	require.NoError(t, err)
	assert.Equal(t, StateMember, outcome.State)
	assert.False(t, outcome.Changed)
	assert.Len(t, repo.memberships, 1)
}

func TestProcessInvoiceEventSuccessRemovesMember(t *testing.T) {
	repo := newFakeRepo()
	resolver := seedInvoiceFixtures(repo)
	svc := newInvoiceService(repo, resolver)
	ctx := context.Background()

	_, err := svc.ProcessInvoiceEvent(ctx, subscriptionInvoice(), true)
	require.NoError(t, err)

	outcome, err := svc.ProcessInvoiceEvent(ctx, subscriptionInvoice(), false)
	require.NoError(t, err)
	assert.Equal(t, StateNotMember, outcome.State)
	assert.True(t, outcome.Changed)

	_, err = repo.GetActiveGroupMembership(context.Background(), unpaidGroupID, 7)
	assert.Error(t, err)
}

func TestProcessInvoiceEventSuccessWithoutMembershipIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	resolver := seedInvoiceFixtures(repo)
	svc := newInvoiceService(repo, resolver)

	outcome, err := svc.ProcessInvoiceEvent(context.Background(), subscriptionInvoice(), false)
	require.NoError(t, err)
	assert.Equal(t, StateNotMember, outcome.State)
	assert.False(t, outcome.Changed)
}

func TestProcessInvoiceEventFailureReactivatesSoftDeletedRow(t *testing.T) {
	repo := newFakeRepo()
	resolver := seedInvoiceFixtures(repo)
	svc := newInvoiceService(repo, resolver)
	ctx := context.Background()

	// Member, removed, fails again. The original row must come back instead
	// of a second one appearing.
	_, err := svc.ProcessInvoiceEvent(ctx, subscriptionInvoice(), true)
	require.NoError(t, err)
	_, err = svc.ProcessInvoiceEvent(ctx, subscriptionInvoice(), false)
	require.NoError(t, err)

	outcome, err := svc.ProcessInvoiceEvent(ctx, subscriptionInvoice(), true)
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.Len(t, repo.memberships, 1)

	m, err := repo.GetActiveGroupMembership(context.Background(), unpaidGroupID, 7)
	require.NoError(t, err)
	assert.Nil(t, m.DeletedAt)
}

func TestProcessInvoiceEventNonSubscriptionIgnored(t *testing.T) {
	repo := newFakeRepo()
	resolver := seedInvoiceFixtures(repo)
	svc := newInvoiceService(repo, resolver)

	inv := subscriptionInvoice()
	inv.Subscription = ""

	outcome, err := svc.ProcessInvoiceEvent(context.Background(), inv, true)
	require.NoError(t, err)
	assert.True(t, outcome.Ignored)
	assert.Equal(t, "no_subscription", outcome.IgnoredReason)
	assert.Empty(t, repo.memberships)
}

func TestProcessInvoiceEventUnknownCustomerAcked(t *testing.T) {
	repo := newFakeRepo()
	resolver := seedInvoiceFixtures(repo)
	svc := newInvoiceService(repo, resolver)

	inv := subscriptionInvoice()
	inv.Customer = "cus_gone"

	outcome, err := svc.ProcessInvoiceEvent(context.Background(), inv, true)
	require.NoError(t, err)
	assert.True(t, outcome.Ignored)
	assert.Equal(t, "customer_unresolvable", outcome.IgnoredReason)
}

func TestProcessInvoiceEventDeletedCustomerAcked(t *testing.T) {
	repo := newFakeRepo()
	resolver := seedInvoiceFixtures(repo)
	resolver.customers["cus_123"].Deleted = true
	svc := newInvoiceService(repo, resolver)

	outcome, err := svc.ProcessInvoiceEvent(context.Background(), subscriptionInvoice(), true)
	require.NoError(t, err)
	assert.True(t, outcome.Ignored)
	assert.Equal(t, "customer_unresolvable", outcome.IgnoredReason)
}

func TestProcessInvoiceEventUnknownPortalUserAcked(t *testing.T) {
	repo := newFakeRepo()
	resolver := seedInvoiceFixtures(repo)
	delete(repo.users, 7)
	svc := newInvoiceService(repo, resolver)

	outcome, err := svc.ProcessInvoiceEvent(context.Background(), subscriptionInvoice(), true)
	require.NoError(t, err)
	assert.True(t, outcome.Ignored)
	assert.Equal(t, "user_unresolvable", outcome.IgnoredReason)
	assert.Empty(t, repo.memberships)
}

func TestProcessInvoiceEventResolverErrorPropagates(t *testing.T) {
	repo := newFakeRepo()
	resolver := seedInvoiceFixtures(repo)
	resolver.failErr = errors.New("gateway timeout")
	svc := newInvoiceService(repo, resolver)

	_, err := svc.ProcessInvoiceEvent(context.Background(), subscriptionInvoice(), true)
	require.Error(t, err)
	assert.Empty(t, repo.memberships)
}

func TestProcessInvoiceEventOutOfOrderDeliveriesConverge(t *testing.T) {
	repo := newFakeRepo()
	resolver := seedInvoiceFixtures(repo)
	svc := newInvoiceService(repo, resolver)
	ctx := context.Background()

	// Success arrives before the stale failure retry; a later success wins.
	_, err := svc.ProcessInvoiceEvent(ctx, subscriptionInvoice(), false)
	require.NoError(t, err)
	_, err = svc.ProcessInvoiceEvent(ctx, subscriptionInvoice(), true)
	require.NoError(t, err)
	_, err = svc.ProcessInvoiceEvent(ctx, subscriptionInvoice(), false)
	require.NoError(t, err)

	_, err = repo.GetActiveGroupMembership(context.Background(), unpaidGroupID, 7)
	assert.Error(t, err)

	// GORM soft-delete helper sanity on the row left behind.
	for _, m := range repo.memberships {
		assert.False(t, m.IsActive())
		assert.WithinDuration(t, time.Now(), *m.DeletedAt, time.Minute)
	}
}
