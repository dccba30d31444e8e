package payment

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/matiuskuma2/SMG-sub004/app/models"
)

// genericEventLabel stands in when the event row cannot be resolved; name
// lookup failures must never block a notification.
const genericEventLabel = "an upcoming event"

// dispatchNotifications creates in-app notification records and enqueues the
// matching emails. Runs on fresh deliveries only; the in-app record is the
// system of record and email is best-effort on top.
func (s *Service) dispatchNotifications(ctx context.Context, intent *CheckoutIntent, outcome *CheckoutOutcome) {
	eventName := genericEventLabel
	if ev, err := s.repo.GetEventByID(ctx, intent.EventID); err == nil {
		eventName = ev.Title
	} else {
		log.Warnf("[Payment] Could not resolve event %d for notification text: %v", intent.EventID, err)
	}

	gatheringApplied := false
	for _, category := range outcome.Applied {
		if category == CategoryGathering {
			gatheringApplied = true
		}
	}

	for _, category := range outcome.Applied {
		// A combined gathering+event purchase produces one email, not two:
		// the gathering notification covers the whole purchase. Suppression
		// keys on the gathering write having succeeded, so a failed gathering
		// upsert still announces the event seat that was recorded.
		if category == CategoryEvent && gatheringApplied {
			continue
		}

		notificationType, subject, content := notificationText(category, eventName)
		if notificationType == "" {
			continue
		}

		enabled, err := s.repo.GetNotificationSetting(ctx, intent.UserID, notificationType)
		if err != nil {
			log.Errorf("[Payment] Notification setting lookup (user %d, type %s) failed: %v",
				intent.UserID, notificationType, err)
			continue
		}
		if !enabled {
			continue
		}

		notification := &models.Notification{
			Type:        notificationType,
			Content:     content,
			ReferenceID: intent.EventID,
		}
		if err := s.repo.CreateNotification(ctx, notification, []uint{intent.UserID}); err != nil {
			log.Errorf("[Payment] Creating %s notification for user %d failed: %v",
				notificationType, intent.UserID, err)
			continue
		}
		outcome.Notifications = append(outcome.Notifications, notificationType)

		// Attendance is already committed; an email failure is logged and
		// never propagated back to the webhook response.
		user, err := s.repo.GetUserByID(ctx, intent.UserID)
		if err != nil {
			log.Errorf("[Payment] User %d lookup for notification email failed: %v", intent.UserID, err)
			continue
		}
		html := fmt.Sprintf("<p>%s</p>", content)
		if err := s.mailer.EnqueueMail(user.Email, subject, content, html); err != nil {
			log.Errorf("[Payment] Enqueuing %s email to %s failed: %v", notificationType, user.Email, err)
		}
	}
}

func notificationText(category Category, eventName string) (notificationType, subject, content string) {
	switch category {
	case CategoryEvent:
		return models.NotificationTypeEventApplication,
			"Event application received",
			fmt.Sprintf("Your application for %s has been received.", eventName)
	case CategoryGathering:
		return models.NotificationTypeGatheringApplication,
			"Social gathering application received",
			fmt.Sprintf("Your payment and application for the social gathering of %s have been received.", eventName)
	case CategoryConsultation:
		return models.NotificationTypeConsultationApplication,
			"Consultation application received",
			fmt.Sprintf("Your consultation slot for %s has been reserved.", eventName)
	default:
		return "", "", ""
	}
}
