package donations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventPaymentIntentSucceeded   = "payment_intent.succeeded"
)

// PaymentEvent is one of the provider events that records a donor:
// CheckoutSessionCompleted or PaymentIntentSucceeded.
type PaymentEvent interface {
	Donor(at time.Time) Donor
	isPaymentEvent()
}

type CheckoutSessionCompleted struct {
	SessionID     string
	CustomerName  string
	CustomerEmail string
	AmountTotal   int64
}

func (e CheckoutSessionCompleted) Donor(at time.Time) Donor {
	name := firstNonEmpty(e.CustomerName, e.CustomerEmail)

	var amount float64
	if e.AmountTotal > 0 {
		amount = fromMinorUnits(e.AmountTotal)
	}

	return NewDonor(name, amount, at)
}

func (CheckoutSessionCompleted) isPaymentEvent() {}

type Charge struct {
	ID           string
	Amount       int64
	BillingName  string
	BillingEmail string
}

type PaymentIntentSucceeded struct {
	IntentID string
	Amount   int64
	Charge   *Charge
}

func (e PaymentIntentSucceeded) Donor(at time.Time) Donor {
	var name string
	amount := e.Amount

	if e.Charge != nil {
		name = firstNonEmpty(e.Charge.BillingName, e.Charge.BillingEmail)

		if e.Charge.Amount > 0 {
			amount = e.Charge.Amount
		}
	}

	return NewDonor(name, fromMinorUnits(amount), at)
}

func (PaymentIntentSucceeded) isPaymentEvent() {}

type billingDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type chargePayload struct {
	ID             string         `json:"id"`
	Object         string         `json:"object"`
	Amount         int64          `json:"amount"`
	BillingDetails billingDetails `json:"billing_details"`
}

type checkoutSessionPayload struct {
	ID              string         `json:"id"`
	Object          string         `json:"object"`
	AmountTotal     int64          `json:"amount_total"`
	CustomerEmail   string         `json:"customer_email"`
	CustomerDetails billingDetails `json:"customer_details"`
}

type paymentIntentPayload struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Amount  int64  `json:"amount"`
	Charges struct {
		Data []chargePayload `json:"data"`
	} `json:"charges"`
	LatestCharge json.RawMessage `json:"latest_charge"`
}

// DecodeEvent turns the data.object of a verified provider event into a
// PaymentEvent. Event types that do not record a donor yield ErrUnhandledEvent.
func DecodeEvent(eventType string, object json.RawMessage) (PaymentEvent, error) {
	switch eventType {
	case EventCheckoutSessionCompleted:
		var session checkoutSessionPayload
		if err := decodeObject(object, &session); err != nil {
			return nil, err
		}

		if err := checkKind(session.Object, "checkout.session"); err != nil {
			return nil, err
		}

		return CheckoutSessionCompleted{
			SessionID:     session.ID,
			CustomerName:  session.CustomerDetails.Name,
			CustomerEmail: firstNonEmpty(session.CustomerEmail, session.CustomerDetails.Email),
			AmountTotal:   session.AmountTotal,
		}, nil
	case EventPaymentIntentSucceeded:
		var intent paymentIntentPayload
		if err := decodeObject(object, &intent); err != nil {
			return nil, err
		}

		if err := checkKind(intent.Object, "payment_intent"); err != nil {
			return nil, err
		}

		charge, err := intent.charge()
		if err != nil {
			return nil, err
		}

		return PaymentIntentSucceeded{
			IntentID: intent.ID,
			Amount:   intent.Amount,
			Charge:   charge,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnhandledEvent, eventType)
	}
}

// charge prefers the legacy charges list and falls back to an expanded
// latest_charge. An unexpanded latest_charge is only an ID and carries no
// billing details.
func (p paymentIntentPayload) charge() (*Charge, error) {
	if len(p.Charges.Data) > 0 {
		return p.Charges.Data[0].asCharge(), nil
	}

	raw := bytes.TrimSpace(p.LatestCharge)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}

	var c chargePayload
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: latest_charge: %w", ErrMalformedEvent, err)
	}

	return c.asCharge(), nil
}

func (c chargePayload) asCharge() *Charge {
	return &Charge{
		ID:           c.ID,
		Amount:       c.Amount,
		BillingName:  c.BillingDetails.Name,
		BillingEmail: c.BillingDetails.Email,
	}
}

func decodeObject(raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return fmt.Errorf("%w: data.object is not an object", ErrMalformedEvent)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	return nil
}

// checkKind tolerates a missing object tag.
func checkKind(got, want string) error {
	if got != "" && got != want {
		return fmt.Errorf("%w: got %s object, expected %s", ErrMalformedEvent, got, want)
	}

	return nil
}

func fromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
