package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matiuskuma2/SMG-sub004/app/models"
	"gorm.io/gorm"
)

type attendanceKey struct {
	EventID uint
	UserID  uint
}

type settingKey struct {
	UserID uint
	Type   string
}

// fakeRepo is an in-memory Repository with the same upsert and soft-delete
// semantics as the GORM implementation.
type fakeRepo struct {
	nextID uint

	events       map[uint]*models.Event
	users        map[uint]*models.User
	groups       map[string]*models.Group
	eventAtt     map[attendanceKey]*models.EventAttendance
	gatheringAtt map[attendanceKey]*models.GatheringAttendance
	consultAtt   map[attendanceKey]*models.ConsultationAttendance
	memberships  map[attendanceKey]*models.GroupMembership // key: (group, user)
	settings     map[settingKey]bool
	answers      []*models.QuestionAnswer

	notifications []*models.Notification
	links         []*models.UserNotification
	logs          map[string]*models.PaymentWebhookLog

	// failCategory simulates a store failure for a single category's upsert.
	failCategory map[Category]error

	// ctxSeen records the context each store call ran under.
	ctxSeen []context.Context
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:       map[uint]*models.Event{},
		users:        map[uint]*models.User{},
		groups:       map[string]*models.Group{},
		eventAtt:     map[attendanceKey]*models.EventAttendance{},
		gatheringAtt: map[attendanceKey]*models.GatheringAttendance{},
		consultAtt:   map[attendanceKey]*models.ConsultationAttendance{},
		memberships:  map[attendanceKey]*models.GroupMembership{},
		settings:     map[settingKey]bool{},
		logs:         map[string]*models.PaymentWebhookLog{},
		failCategory: map[Category]error{},
	}
}

func (r *fakeRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *fakeRepo) GetActiveGatheringAttendance(ctx context.Context, eventID, userID uint) (*models.GatheringAttendance, error) {
	r.ctxSeen = append(r.ctxSeen, ctx)
	a, ok := r.gatheringAtt[attendanceKey{eventID, userID}]
	if !ok || a.DeletedAt != nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeRepo) UpsertEventAttendance(_ context.Context, a *models.EventAttendance) error {
	if err := r.failCategory[CategoryEvent]; err != nil {
		return err
	}
	key := attendanceKey{a.EventID, a.UserID}
	if existing, ok := r.eventAtt[key]; ok {
		existing.IsOnline = a.IsOnline
		existing.DeletedAt = nil
		existing.UpdatedAt = time.Now()
		return nil
	}
	a.ID = r.id()
	r.eventAtt[key] = a
	return nil
}

func (r *fakeRepo) UpsertGatheringAttendance(ctx context.Context, a *models.GatheringAttendance) error {
	r.ctxSeen = append(r.ctxSeen, ctx)
	if err := r.failCategory[CategoryGathering]; err != nil {
		return err
	}
	key := attendanceKey{a.EventID, a.UserID}
	if existing, ok := r.gatheringAtt[key]; ok {
		existing.PaymentReference = a.PaymentReference
		existing.PaymentStatus = a.PaymentStatus
		existing.Amount = a.Amount
		existing.PaidAt = a.PaidAt
		existing.DeletedAt = nil
		existing.UpdatedAt = time.Now()
		return nil
	}
	a.ID = r.id()
	r.gatheringAtt[key] = a
	return nil
}

func (r *fakeRepo) UpsertConsultationAttendance(_ context.Context, a *models.ConsultationAttendance) error {
	if err := r.failCategory[CategoryConsultation]; err != nil {
		return err
	}
	key := attendanceKey{a.EventID, a.UserID}
	if existing, ok := r.consultAtt[key]; ok {
		existing.DeletedAt = nil
		existing.UpdatedAt = time.Now()
		return nil
	}
	a.ID = r.id()
	r.consultAtt[key] = a
	return nil
}

func (r *fakeRepo) ReplaceQuestionAnswers(_ context.Context, userID uint, answers map[string]string) error {
	now := time.Now()
	for key, answer := range answers {
		for _, prior := range r.answers {
			if prior.UserID == userID && prior.QuestionKey == key && prior.DeletedAt == nil {
				prior.DeletedAt = &now
			}
		}
		r.answers = append(r.answers, &models.QuestionAnswer{
			ID:          r.id(),
			UserID:      userID,
			QuestionKey: key,
			Answer:      answer,
		})
	}
	return nil
}

func (r *fakeRepo) GetGroupByName(_ context.Context, name string) (*models.Group, error) {
	g, ok := r.groups[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return g, nil
}

func (r *fakeRepo) GetActiveGroupMembership(ctx context.Context, groupID, userID uint) (*models.GroupMembership, error) {
	r.ctxSeen = append(r.ctxSeen, ctx)
	m, ok := r.memberships[attendanceKey{groupID, userID}]
	if !ok || m.DeletedAt != nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeRepo) UpsertGroupMembership(_ context.Context, m *models.GroupMembership) error {
	key := attendanceKey{m.GroupID, m.UserID}
	if existing, ok := r.memberships[key]; ok {
		existing.DeletedAt = nil
		existing.UpdatedAt = time.Now()
		*m = *existing
		return nil
	}
	m.ID = r.id()
	r.memberships[key] = m
	return nil
}

func (r *fakeRepo) SoftDeleteGroupMembership(_ context.Context, groupID, userID uint) error {
	if m, ok := r.memberships[attendanceKey{groupID, userID}]; ok && m.DeletedAt == nil {
		now := time.Now()
		m.DeletedAt = &now
	}
	return nil
}

func (r *fakeRepo) GetEventByID(_ context.Context, id uint) (*models.Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *fakeRepo) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetNotificationSetting(_ context.Context, userID uint, notificationType string) (bool, error) {
	return r.settings[settingKey{userID, notificationType}], nil
}

func (r *fakeRepo) CreateNotification(ctx context.Context, n *models.Notification, userIDs []uint) error {
	r.ctxSeen = append(r.ctxSeen, ctx)
	n.ID = r.id()
	r.notifications = append(r.notifications, n)
	for _, userID := range userIDs {
		r.links = append(r.links, &models.UserNotification{
			ID:             r.id(),
			NotificationID: n.ID,
			UserID:         userID,
		})
	}
	return nil
}

func (r *fakeRepo) CreateWebhookLogIfNotExists(_ context.Context, entry *models.PaymentWebhookLog) (bool, *models.PaymentWebhookLog, error) {
	key := entry.Provider + "/" + entry.ProviderEventID
	if stored, ok := r.logs[key]; ok {
		return false, stored, nil
	}
	entry.ID = r.id()
	r.logs[key] = entry
	return true, entry, nil
}

func (r *fakeRepo) MarkWebhookProcessed(_ context.Context, id uint, processingError string) error {
	for _, entry := range r.logs {
		if entry.ID == id {
			now := time.Now()
			entry.ProcessedAt = &now
			entry.ProcessingError = processingError
			return nil
		}
	}
	return fmt.Errorf("webhook log %d not found", id)
}

// activeGathering counts active gathering rows, for invariant assertions.
func (r *fakeRepo) activeGathering() int {
	n := 0
	for _, a := range r.gatheringAtt {
		if a.DeletedAt == nil {
			n++
		}
	}
	return n
}

type sentMail struct {
	To      string
	Subject string
}

type fakeMailer struct {
	sent    []sentMail
	failErr error
}

func (m *fakeMailer) EnqueueMail(to, subject, textBody, htmlBody string) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject})
	return nil
}

type fakeResolver struct {
	customers map[string]*CustomerInfo
	failErr   error
}

func (f *fakeResolver) Resolve(ctx context.Context, customerID string) (*CustomerInfo, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	return f.customers[customerID], nil
}
