package payment

import (
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ErrInvalidSignature is returned for any authenticity failure: missing
// header, missing secret, or a body that does not verify. Callers respond
// 4xx and must not let the payload reach a reconciler.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// VerifyWebhook authenticates a raw webhook body against the shared signing
// secret using the gateway's canonical scheme (HMAC-SHA256 over the unparsed
// body with a timestamp tolerance window) and returns the parsed envelope.
func VerifyWebhook(payload []byte, signatureHeader, webhookSecret string) (*stripe.Event, error) {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" {
		return nil, ErrInvalidSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, sig, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, ErrInvalidSignature
	}
	return &event, nil
}
