// Package gateway abstracts the two supported payment providers behind one
// capability set: create a purchase intent, verify a client-submitted proof
// of payment, and verify-and-decode an asynchronous webhook payload.
//
// The adapter is purely verification and intent creation; persistence of
// payment outcomes belongs to the caller.
package gateway

import (
	"context"
	"errors"
)

var ErrInvalidSignature = errors.New("invalid gateway signature")

// Intent is the provider-specific handle returned when a purchase is
// started: Razorpay hands back an order id the client pays against, Stripe
// hands back a hosted checkout URL.
type Intent struct {
	Gateway     string `json:"gateway"`
	OrderID     string `json:"order_id,omitempty"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

type IntentParams struct {
	AmountCents int64
	Currency    string
	UserID      int
	PlanCode    string
}

const (
	// EventPaymentSucceeded is the single normalized event the billing core
	// acts on. Everything else a provider delivers maps to EventIgnored.
	EventPaymentSucceeded = "payment_succeeded"
	EventIgnored          = "ignored"
)

// Event is a provider webhook payload decoded into the normalized
// "payment succeeded" fact. Fields are filled as far as the provider's
// payload allows; UserID and PlanCode are only present when the provider
// echoes back the metadata attached at intent creation.
type Event struct {
	ID             string
	Type           string
	PaymentID      string
	OrderID        string
	SubscriptionID string
	UserID         int
	PlanCode       string
	AmountCents    int64
	Currency       string
}

type Gateway interface {
	Name() string
	// WebhookHeader names the HTTP header carrying the webhook signature.
	WebhookHeader() string
	CreateIntent(ctx context.Context, p IntentParams) (*Intent, error)
	// VerifyClientProof checks a client-submitted order/payment/signature
	// triple. Providers without a client confirmation flow always return false.
	VerifyClientProof(orderID, paymentID, signature string) bool
	// VerifyWebhook authenticates the raw webhook body against the signature
	// header and decodes it. Returns ErrInvalidSignature on mismatch; the
	// caller must reject the request rather than process the payload.
	VerifyWebhook(body []byte, signatureHeader string) (*Event, error)
}
