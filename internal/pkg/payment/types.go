package payment

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Category identifies one purchasable attendance category on a checkout.
type Category string

const (
	CategoryEvent        Category = "event"
	CategoryGathering    Category = "gathering"
	CategoryConsultation Category = "consultation"
)

// Checkout session modes as delivered by the gateway.
const (
	checkoutModePayment      = "payment"
	checkoutModeSubscription = "subscription"
)

// Sentinel errors the webhook controllers map to HTTP statuses.
var (
	// ErrMissingActingUser means an otherwise-applicable checkout event has
	// no user to reconcile against. Fatal to the request (4xx).
	ErrMissingActingUser = errors.New("checkout session metadata is missing user_id")
)

// CheckoutSession is the subset of a gateway checkout-session payload the
// engine reads. Webhook payloads carry referenced objects as plain ID
// strings, so a narrow struct is decoded from the event's raw data instead
// of the SDK's expandable types.
type CheckoutSession struct {
	ID            string            `json:"id"`
	Mode          string            `json:"mode"`
	Customer      string            `json:"customer"`
	PaymentIntent string            `json:"payment_intent"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Created       int64             `json:"created"`
	Metadata      map[string]string `json:"metadata"`
}

// Invoice is the subset of a gateway invoice payload the engine reads.
type Invoice struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	AmountDue    int64  `json:"amount_due"`
	AmountPaid   int64  `json:"amount_paid"`
	Status       string `json:"status"`
}

// CheckoutIntent is the validated business content of a checkout session:
// which seats were bought, by whom, for which event.
type CheckoutIntent struct {
	SessionID        string
	PaymentReference string `validate:"required"`
	PaymentStatus    string
	Amount           int64
	EventID          uint `validate:"required"`
	UserID           uint `validate:"required"`
	Categories       []Category
	IsOnline         bool
	Answers          map[string]string
	PaidAt           time.Time
}

// HasCategory reports whether the intent includes the given category.
func (in *CheckoutIntent) HasCategory(c Category) bool {
	for _, have := range in.Categories {
		if have == c {
			return true
		}
	}
	return false
}

// ParseCheckoutIntent extracts the business metadata from a checkout
// session. It returns (nil, nil) when the session belongs to a different
// product flow (no event_id metadata, e.g. a generic payment link) and
// ErrMissingActingUser when the event reference is present but the acting
// user is not.
func ParseCheckoutIntent(sess *CheckoutSession) (*CheckoutIntent, error) {
	meta := sess.Metadata
	if meta == nil {
		meta = map[string]string{}
	}

	rawEventID := strings.TrimSpace(meta["event_id"])
	if rawEventID == "" {
		return nil, nil
	}
	eventID, err := strconv.ParseUint(rawEventID, 10, 64)
	if err != nil || eventID == 0 {
		return nil, nil
	}

	rawUserID := strings.TrimSpace(meta["user_id"])
	if rawUserID == "" {
		return nil, ErrMissingActingUser
	}
	userID, err := strconv.ParseUint(rawUserID, 10, 64)
	if err != nil || userID == 0 {
		return nil, ErrMissingActingUser
	}

	intent := &CheckoutIntent{
		SessionID:        strings.TrimSpace(sess.ID),
		PaymentReference: strings.TrimSpace(sess.PaymentIntent),
		PaymentStatus:    strings.TrimSpace(sess.PaymentStatus),
		Amount:           sess.AmountTotal,
		EventID:          uint(eventID),
		UserID:           uint(userID),
		Categories:       parseCategories(meta["categories"]),
		Answers:          parseAnswers(meta["answers"]),
	}

	if online, err := strconv.ParseBool(strings.TrimSpace(meta["is_online"])); err == nil {
		intent.IsOnline = online
	}
	if sess.Created > 0 {
		intent.PaidAt = time.Unix(sess.Created, 0)
	} else {
		intent.PaidAt = time.Now()
	}
	// Payment links without a payment intent id fall back to the session id
	// so the idempotency comparison always has a stable key to work with.
	if intent.PaymentReference == "" {
		intent.PaymentReference = intent.SessionID
	}

	if err := validator.New().Struct(intent); err != nil {
		return nil, err
	}
	return intent, nil
}

func parseCategories(raw string) []Category {
	var out []Category
	seen := make(map[Category]struct{}, 3)
	for _, tok := range strings.Split(raw, ",") {
		c := Category(strings.ToLower(strings.TrimSpace(tok)))
		switch c {
		case CategoryEvent, CategoryGathering, CategoryConsultation:
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func parseAnswers(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var answers map[string]string
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		return nil
	}
	if len(answers) == 0 {
		return nil
	}
	return answers
}
