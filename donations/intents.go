package donations

import "math"

const DefaultAmount int64 = 5000

type PaymentIntentRequest struct {
	Amount   int64
	Currency string
	Metadata map[string]string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
}

// NewPaymentIntentRequest applies the defaults for a donation: 5000 minor
// units in the configured currency. The amount is rounded to whole minor units.
func NewPaymentIntentRequest(amount *float64, currency, defaultCurrency string, metadata map[string]string) PaymentIntentRequest {
	req := PaymentIntentRequest{
		Amount:   DefaultAmount,
		Currency: currency,
		Metadata: metadata,
	}

	if amount != nil {
		req.Amount = int64(math.Round(*amount))
	}

	if req.Currency == "" {
		req.Currency = defaultCurrency
	}

	if req.Metadata == nil {
		req.Metadata = map[string]string{}
	}

	return req
}
