package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/willmadison/donation-flow/donations"
)

// Client is the slice of the payment provider the service depends on.
type Client interface {
	CreatePaymentIntent(context.Context, donations.PaymentIntentRequest) (donations.PaymentIntent, error)
}

type stripeClient struct {
	api *client.API
}

type clientOptions struct {
	baseURL string
	logger  zerolog.Logger
}

type ClientOption func(*clientOptions)

// WithBaseURL points the client at a different API host, e.g. stripe-mock.
func WithBaseURL(url string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = url
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

func NewStripeClient(secretKey string, opts ...ClientOption) (Client, error) {
	if secretKey == "" {
		return &stripeClient{}, errors.New("missing Stripe secret key")
	}

	options := clientOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&options)
	}

	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, options.backendConfig()),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, options.backendConfig()),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, options.backendConfig()),
	})

	return &stripeClient{api: api}, nil
}

// backendConfig returns a fresh config per backend; GetBackendWithConfig
// fills in the URL on the value it is given.
func (o clientOptions) backendConfig() *stripe.BackendConfig {
	cfg := &stripe.BackendConfig{
		EnableTelemetry:   stripe.Bool(false),
		LeveledLogger:     stripeLogger{o.logger},
		MaxNetworkRetries: stripe.Int64(0),
	}

	if o.baseURL != "" {
		cfg.URL = stripe.String(o.baseURL)
	}

	return cfg
}

func (c *stripeClient) CreatePaymentIntent(ctx context.Context, req donations.PaymentIntentRequest) (donations.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return donations.PaymentIntent{}, upstreamError(err)
	}

	return donations.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

func upstreamError(err error) error {
	message := err.Error()

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		message = stripeErr.Msg
	}

	return donations.UpstreamError{Message: message, Err: err}
}

// stripeLogger routes stripe-go's leveled logging through zerolog.
type stripeLogger struct {
	log zerolog.Logger
}

func (l stripeLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug().Str("component", "stripe").Msg(fmt.Sprintf(format, v...))
}

// Infof is used for every request, which is debug noise here.
func (l stripeLogger) Infof(format string, v ...interface{}) {
	l.log.Debug().Str("component", "stripe").Msg(fmt.Sprintf(format, v...))
}

func (l stripeLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn().Str("component", "stripe").Msg(fmt.Sprintf(format, v...))
}

func (l stripeLogger) Errorf(format string, v ...interface{}) {
	l.log.Error().Str("component", "stripe").Msg(fmt.Sprintf(format, v...))
}
