package payment

import (
	"context"
	"time"

	"github.com/matiuskuma2/SMG-sub004/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the payment service. Every
// method takes the request context so store calls share the handler's
// deadline instead of hanging past it.
type Repository interface {
	GetActiveGatheringAttendance(ctx context.Context, eventID, userID uint) (*models.GatheringAttendance, error)
	UpsertEventAttendance(ctx context.Context, a *models.EventAttendance) error
	UpsertGatheringAttendance(ctx context.Context, a *models.GatheringAttendance) error
	UpsertConsultationAttendance(ctx context.Context, a *models.ConsultationAttendance) error
	ReplaceQuestionAnswers(ctx context.Context, userID uint, answers map[string]string) error

	GetGroupByName(ctx context.Context, name string) (*models.Group, error)
	GetActiveGroupMembership(ctx context.Context, groupID, userID uint) (*models.GroupMembership, error)
	UpsertGroupMembership(ctx context.Context, m *models.GroupMembership) error
	SoftDeleteGroupMembership(ctx context.Context, groupID, userID uint) error

	GetEventByID(ctx context.Context, id uint) (*models.Event, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	GetNotificationSetting(ctx context.Context, userID uint, notificationType string) (bool, error)
	CreateNotification(ctx context.Context, n *models.Notification, userIDs []uint) error

	CreateWebhookLogIfNotExists(ctx context.Context, entry *models.PaymentWebhookLog) (bool, *models.PaymentWebhookLog, error)
	MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payment repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetActiveGatheringAttendance(ctx context.Context, eventID, userID uint) (*models.GatheringAttendance, error) {
	var a models.GatheringAttendance
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ? AND deleted_at IS NULL", eventID, userID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// attendanceConflict is the shared upsert target: the composite natural key
// of every attendance table.
var attendanceConflict = []clause.Column{
	{Name: "event_id"},
	{Name: "user_id"},
}

func (r *gormRepository) UpsertEventAttendance(ctx context.Context, a *models.EventAttendance) error {
	// deleted_at is part of the update set so a re-application reactivates
	// a previously cancelled row.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: attendanceConflict,
		DoUpdates: clause.AssignmentColumns([]string{
			"is_online",
			"deleted_at",
			"updated_at",
		}),
	}).Create(a).Error
}

func (r *gormRepository) UpsertGatheringAttendance(ctx context.Context, a *models.GatheringAttendance) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: attendanceConflict,
		DoUpdates: clause.AssignmentColumns([]string{
			"payment_reference",
			"payment_status",
			"amount",
			"paid_at",
			"deleted_at",
			"updated_at",
		}),
	}).Create(a).Error
}

func (r *gormRepository) UpsertConsultationAttendance(ctx context.Context, a *models.ConsultationAttendance) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: attendanceConflict,
		DoUpdates: clause.AssignmentColumns([]string{
			"deleted_at",
			"updated_at",
		}),
	}).Create(a).Error
}

func (r *gormRepository) ReplaceQuestionAnswers(ctx context.Context, userID uint, answers map[string]string) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for key, answer := range answers {
			if err := tx.Model(&models.QuestionAnswer{}).
				Where("user_id = ? AND question_key = ? AND deleted_at IS NULL", userID, key).
				Update("deleted_at", &now).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.QuestionAnswer{
				UserID:      userID,
				QuestionKey: key,
				Answer:      answer,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *gormRepository) GetGroupByName(ctx context.Context, name string) (*models.Group, error) {
	var g models.Group
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *gormRepository) GetActiveGroupMembership(ctx context.Context, groupID, userID uint) (*models.GroupMembership, error) {
	var m models.GroupMembership
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ? AND deleted_at IS NULL", groupID, userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) UpsertGroupMembership(ctx context.Context, m *models.GroupMembership) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "group_id"},
			{Name: "user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"deleted_at",
			"updated_at",
		}),
	}).Create(m).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", m.GroupID, m.UserID).
		First(m).Error
}

func (r *gormRepository) SoftDeleteGroupMembership(ctx context.Context, groupID, userID uint) error {
	now := time.Now()
	// RowsAffected 0 is fine: deleting a membership that is already gone
	// must be a no-op.
	return r.db.WithContext(ctx).Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ? AND deleted_at IS NULL", groupID, userID).
		Update("deleted_at", &now).Error
}

func (r *gormRepository) GetEventByID(ctx context.Context, id uint) (*models.Event, error) {
	var e models.Event
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *gormRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) GetNotificationSetting(ctx context.Context, userID uint, notificationType string) (bool, error) {
	var s models.NotificationSetting
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, notificationType).First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Absent row is an implicit opt-out, not an error.
			return false, nil
		}
		return false, err
	}
	return s.Enabled, nil
}

func (r *gormRepository) CreateNotification(ctx context.Context, n *models.Notification, userIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		for _, userID := range userIDs {
			if err := tx.Create(&models.UserNotification{
				NotificationID: n.ID,
				UserID:         userID,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *gormRepository) CreateWebhookLogIfNotExists(ctx context.Context, entry *models.PaymentWebhookLog) (bool, *models.PaymentWebhookLog, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(entry)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookLog
	if err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_event_id = ?", entry.Provider, entry.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.WithContext(ctx).Model(&models.PaymentWebhookLog{}).
		Where("id = ?", id).Updates(updates).Error
}
