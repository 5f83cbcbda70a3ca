package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/willmadison/donation-flow/donations"
)

func newStripeTestServer(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewStripeClient("sk_test_123", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewStripeClient failed: %v", err)
	}

	return client
}

func TestNewStripeClientRequiresKey(t *testing.T) {
	if _, err := NewStripeClient(""); err == nil {
		t.Fatal("expected an error for a missing secret key")
	}
}

func TestStripeClientCreatePaymentIntent(t *testing.T) {
	var form url.Values

	client := newStripeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/payment_intents" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			t.Errorf("unexpected Authorization header %q", got)
		}

		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","amount":2500,"currency":"aud","client_secret":"pi_123_secret_abc"}`))
	})

	intent, err := client.CreatePaymentIntent(context.Background(), donations.PaymentIntentRequest{
		Amount:   2500,
		Currency: "aud",
		Metadata: map[string]string{"campaign": "spring"},
	})
	if err != nil {
		t.Fatalf("CreatePaymentIntent failed: %v", err)
	}

	if intent.ClientSecret != "pi_123_secret_abc" || intent.ID != "pi_123" {
		t.Errorf("unexpected intent %+v", intent)
	}

	expected := map[string]string{
		"amount":                              "2500",
		"currency":                            "aud",
		"automatic_payment_methods[enabled]": "true",
		"metadata[campaign]":                  "spring",
	}
	for key, want := range expected {
		if got := form.Get(key); got != want {
			t.Errorf("form[%q] = %q, want %q", key, got, want)
		}
	}
}

func TestStripeClientSurfacesProviderMessage(t *testing.T) {
	client := newStripeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid currency: zzz","param":"currency"}}`))
	})

	_, err := client.CreatePaymentIntent(context.Background(), donations.PaymentIntentRequest{Amount: 5000, Currency: "zzz"})
	if err == nil {
		t.Fatal("expected an error")
	}

	if !errors.Is(err, donations.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
	if err.Error() != "Invalid currency: zzz" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
