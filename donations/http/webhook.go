package http

import (
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/willmadison/donation-flow/donations"
)

const (
	MaxWebhookBodyBytes = int64(65536)
	SignatureHeader     = "Stripe-Signature"
)

type WebhookVerifier struct {
	secret    string
	tolerance time.Duration
}

// NewWebhookVerifier checks payloads against secret. A zero tolerance uses
// the library default of five minutes.
func NewWebhookVerifier(secret string, tolerance time.Duration) *WebhookVerifier {
	return &WebhookVerifier{secret: secret, tolerance: tolerance}
}

// Verify authenticates the exact bytes received. The event's API version is
// not checked since payloads are decoded by donations.DecodeEvent.
func (v *WebhookVerifier) Verify(payload []byte, signature string) (stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %w", donations.ErrSignatureInvalid, err)
	}

	return event, nil
}
