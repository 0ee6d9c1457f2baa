package gateway

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	stripeAPIBase = "https://api.stripe.com"

	// Stripe retries webhook delivery for a while; reject anything signed
	// too far in the past to limit replay windows.
	stripeSignatureTolerance = 5 * time.Minute
)

// Stripe implements the hosted-checkout model: we create a checkout session
// server-side and learn about completed payments through signed webhooks.
type Stripe struct {
	secretKey     string
	webhookSecret string
	successURL    string
	cancelURL     string
	baseURL       string
	client        *http.Client
	now           func() time.Time
}

func NewStripe(secretKey, webhookSecret, successURL, cancelURL string) *Stripe {
	return &Stripe{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
		baseURL:       stripeAPIBase,
		client:        &http.Client{Timeout: 15 * time.Second},
		now:           time.Now,
	}
}

// NewStripeWithBaseURL is used by tests to point the client at a stub server.
func NewStripeWithBaseURL(secretKey, webhookSecret, successURL, cancelURL, baseURL string) *Stripe {
	g := NewStripe(secretKey, webhookSecret, successURL, cancelURL)
	g.baseURL = baseURL
	return g
}

func (g *Stripe) Name() string { return "stripe" }

func (g *Stripe) WebhookHeader() string { return "Stripe-Signature" }

type stripeCheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (g *Stripe) CreateIntent(ctx context.Context, p IntentParams) (*Intent, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price]", p.PlanCode)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", g.successURL)
	form.Set("cancel_url", g.cancelURL)
	form.Set("metadata[user_id]", strconv.Itoa(p.UserID))
	form.Set("metadata[plan_code]", p.PlanCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stripe create checkout session: unexpected status %d", resp.StatusCode)
	}

	var session stripeCheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("stripe create checkout session: decode: %w", err)
	}

	return &Intent{
		Gateway:     g.Name(),
		OrderID:     session.ID,
		CheckoutURL: session.URL,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
	}, nil
}

// VerifyClientProof is always false for Stripe: hosted checkout has no
// client-submitted proof flow, payments are confirmed by webhook only.
func (g *Stripe) VerifyClientProof(orderID, paymentID, signature string) bool {
	return false
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID           string `json:"id"`
			Subscription string `json:"subscription"`
			AmountPaid   int64  `json:"amount_paid"`
			AmountTotal  int64  `json:"amount_total"`
			Currency     string `json:"currency"`
			Metadata     struct {
				UserID   string `json:"user_id"`
				PlanCode string `json:"plan_code"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// VerifyWebhook authenticates the Stripe-Signature header: the v1 signature
// is HMAC-SHA256(webhook_secret, "<t>.<body>") with t taken from the header,
// accepted only within the tolerance window.
func (g *Stripe) VerifyWebhook(body []byte, signatureHeader string) (*Event, error) {
	ts, sigs := parseStripeSignature(signatureHeader)
	if ts == 0 || len(sigs) == 0 {
		return nil, ErrInvalidSignature
	}

	signedAt := time.Unix(ts, 0)
	if g.now().Sub(signedAt) > stripeSignatureTolerance {
		return nil, ErrInvalidSignature
	}

	signedPayload := strconv.FormatInt(ts, 10) + "." + string(body)
	expected := hmacHex(g.webhookSecret, []byte(signedPayload))

	valid := false
	for _, sig := range sigs {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrInvalidSignature
	}

	var ev stripeEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("stripe webhook: decode: %w", err)
	}

	obj := ev.Data.Object
	userID, _ := strconv.Atoi(obj.Metadata.UserID)

	switch ev.Type {
	case "checkout.session.completed":
		// First payment: the checkout session carries the metadata we
		// attached at intent creation plus the new subscription id.
		return &Event{
			ID:             ev.ID,
			Type:           EventPaymentSucceeded,
			PaymentID:      obj.ID,
			OrderID:        obj.ID,
			SubscriptionID: obj.Subscription,
			UserID:         userID,
			PlanCode:       obj.Metadata.PlanCode,
			AmountCents:    obj.AmountTotal,
			Currency:       strings.ToUpper(obj.Currency),
		}, nil
	case "invoice.paid":
		return &Event{
			ID:             ev.ID,
			Type:           EventPaymentSucceeded,
			PaymentID:      obj.ID,
			SubscriptionID: obj.Subscription,
			AmountCents:    obj.AmountPaid,
			Currency:       strings.ToUpper(obj.Currency),
		}, nil
	default:
		return &Event{ID: ev.ID, Type: EventIgnored}, nil
	}
}

func parseStripeSignature(header string) (int64, []string) {
	var ts int64
	var sigs []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, _ = strconv.ParseInt(kv[1], 10, 64)
		case "v1":
			sigs = append(sigs, kv[1])
		}
	}

	return ts, sigs
}
