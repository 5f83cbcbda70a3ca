package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/willmadison/donation-flow/donations"
)

type paymentIntentRequest struct {
	Amount   *float64          `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

func CreatePaymentIntentHandler(client Client, defaultCurrency string) func(*gin.Context) {
	return func(c *gin.Context) {
		log := zerolog.Ctx(c.Request.Context())

		var body paymentIntentRequest
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		req := donations.NewPaymentIntentRequest(body.Amount, body.Currency, defaultCurrency, body.Metadata)

		if req.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
			return
		}

		intent, err := client.CreatePaymentIntent(c.Request.Context(), req)
		if err != nil {
			log.Error().Err(err).Int64("amount", req.Amount).Str("currency", req.Currency).Msg("failed to create payment intent")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		log.Info().Str("payment_intent", intent.ID).Int64("amount", req.Amount).Str("currency", req.Currency).Msg("payment intent created")

		c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
	}
}

func DonorsHandler(store donations.Store) func(*gin.Context) {
	return func(c *gin.Context) {
		donors, err := store.List(c.Request.Context())
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to read donors")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot read donors"})
			return
		}

		if donors == nil {
			donors = []donations.Donor{}
		}

		c.JSON(http.StatusOK, donors)
	}
}

// WebhookHandler accepts provider events. Only a failed signature check is
// reported back; everything after that is acknowledged so the provider does
// not redeliver, and a failed donor write is only logged.
func WebhookHandler(verifier *WebhookVerifier, store donations.Store, now func() time.Time) func(*gin.Context) {
	if now == nil {
		now = time.Now
	}

	return func(c *gin.Context) {
		log := zerolog.Ctx(c.Request.Context())

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBodyBytes)

		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			log.Error().Err(err).Msg("failed to read webhook body")
			c.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
			return
		}

		event, err := verifier.Verify(payload, c.GetHeader(SignatureHeader))
		if err != nil {
			log.Warn().Err(err).Msg("webhook signature verification failed")
			c.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
			return
		}

		var object json.RawMessage
		if event.Data != nil {
			object = event.Data.Raw
		}

		paymentEvent, err := donations.DecodeEvent(string(event.Type), object)

		switch {
		case errors.Is(err, donations.ErrUnhandledEvent):
			log.Debug().Str("event", event.ID).Str("type", string(event.Type)).Msg("ignoring event")
		case err != nil:
			log.Warn().Err(err).Str("event", event.ID).Str("type", string(event.Type)).Msg("could not decode event")
		default:
			donor := paymentEvent.Donor(now())

			// The provider may hang up after sending; the write still goes through.
			ctx := context.WithoutCancel(c.Request.Context())

			if err := store.Prepend(ctx, donor); err != nil {
				log.Error().Err(err).Str("event", event.ID).Msg("error saving donor")
			} else {
				log.Info().Str("event", event.ID).Str("donor", donor.Name).Float64("amount", donor.Amount).Msg("donor recorded")
			}
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func ConfigHandler(publishableKey, currency string) func(*gin.Context) {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"publishableKey": publishableKey,
			"currency":       currency,
		})
	}
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
