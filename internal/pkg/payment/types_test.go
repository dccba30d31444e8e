package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metadataSession(meta map[string]string) *CheckoutSession {
	return &CheckoutSession{
		ID:            "cs_meta_1",
		Mode:          checkoutModePayment,
		PaymentIntent: "pi_meta_1",
		PaymentStatus: "paid",
		AmountTotal:   1200,
		Created:       time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC).Unix(),
		Metadata:      meta,
	}
}

func TestParseCheckoutIntent(t *testing.T) {
	intent, err := ParseCheckoutIntent(metadataSession(map[string]string{
		"event_id":   "42",
		"user_id":    "7",
		"categories": "event, gathering",
		"is_online":  "true",
		"answers":    `{"diet":"vegan","arrival":"friday"}`,
	}))
	require.NoError(t, err)
	require.NotNil(t, intent)

	assert.Equal(t, uint(42), intent.EventID)
	assert.Equal(t, uint(7), intent.UserID)
	assert.Equal(t, "pi_meta_1", intent.PaymentReference)
	assert.Equal(t, int64(1200), intent.Amount)
	assert.Equal(t, []Category{CategoryEvent, CategoryGathering}, intent.Categories)
	assert.True(t, intent.IsOnline)
	assert.Equal(t, map[string]string{"diet": "vegan", "arrival": "friday"}, intent.Answers)
	assert.Equal(t, int64(1773489600), intent.PaidAt.Unix())
}

func TestParseCheckoutIntentNoEventReference(t *testing.T) {
	cases := map[string]map[string]string{
		"no metadata":    nil,
		"empty event id": {"event_id": "", "user_id": "7"},
		"zero event id":  {"event_id": "0", "user_id": "7"},
		"junk event id":  {"event_id": "abc", "user_id": "7"},
	}
	for name, meta := range cases {
		t.Run(name, func(t *testing.T) {
			intent, err := ParseCheckoutIntent(metadataSession(meta))
			assert.NoError(t, err)
			assert.Nil(t, intent)
		})
	}
}

func TestParseCheckoutIntentMissingUser(t *testing.T) {
	cases := map[string]map[string]string{
		"absent":  {"event_id": "42"},
		"empty":   {"event_id": "42", "user_id": " "},
		"zero":    {"event_id": "42", "user_id": "0"},
		"garbage": {"event_id": "42", "user_id": "seven"},
	}
	for name, meta := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCheckoutIntent(metadataSession(meta))
			assert.ErrorIs(t, err, ErrMissingActingUser)
		})
	}
}

func TestParseCategoriesDedupesAndSkipsUnknown(t *testing.T) {
	got := parseCategories("gathering,event,Gathering, workshop ,consultation,event")
	assert.Equal(t, []Category{CategoryGathering, CategoryEvent, CategoryConsultation}, got)

	assert.Nil(t, parseCategories(""))
	assert.Nil(t, parseCategories("workshop"))
}

func TestParseAnswersIgnoresMalformedJSON(t *testing.T) {
	assert.Nil(t, parseAnswers(""))
	assert.Nil(t, parseAnswers("not json"))
	assert.Nil(t, parseAnswers("{}"))
	assert.Equal(t, map[string]string{"a": "b"}, parseAnswers(`{"a":"b"}`))
}

func TestParseCheckoutIntentFallbackReference(t *testing.T) {
	sess := metadataSession(map[string]string{"event_id": "42", "user_id": "7"})
	sess.PaymentIntent = ""

	intent, err := ParseCheckoutIntent(sess)
	require.NoError(t, err)
	assert.Equal(t, "cs_meta_1", intent.PaymentReference)
}

func TestHasCategory(t *testing.T) {
	intent := &CheckoutIntent{Categories: []Category{CategoryEvent, CategoryGathering}}
	assert.True(t, intent.HasCategory(CategoryEvent))
	assert.True(t, intent.HasCategory(CategoryGathering))
	assert.False(t, intent.HasCategory(CategoryConsultation))
}
