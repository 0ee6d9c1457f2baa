package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const razorpayAPIBase = "https://api.razorpay.com"

// Razorpay implements the order+signature model: the client completes the
// payment in the provider's widget, then submits order id, payment id and
// signature back to us for verification.
type Razorpay struct {
	keyID         string
	keySecret     string
	webhookSecret string
	baseURL       string
	client        *http.Client
}

func NewRazorpay(keyID, keySecret, webhookSecret string) *Razorpay {
	return &Razorpay{
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		baseURL:       razorpayAPIBase,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

// NewRazorpayWithBaseURL is used by tests to point the client at a stub server.
func NewRazorpayWithBaseURL(keyID, keySecret, webhookSecret, baseURL string) *Razorpay {
	g := NewRazorpay(keyID, keySecret, webhookSecret)
	g.baseURL = baseURL
	return g
}

func (g *Razorpay) Name() string { return "razorpay" }

func (g *Razorpay) WebhookHeader() string { return "X-Razorpay-Signature" }

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

func (g *Razorpay) CreateIntent(ctx context.Context, p IntentParams) (*Intent, error) {
	payload := map[string]interface{}{
		"amount":          p.AmountCents,
		"currency":        p.Currency,
		"payment_capture": 1,
		"notes": map[string]string{
			"user_id":   strconv.Itoa(p.UserID),
			"plan_code": p.PlanCode,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("razorpay create order: unexpected status %d", resp.StatusCode)
	}

	var order razorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("razorpay create order: decode: %w", err)
	}

	return &Intent{
		Gateway:     g.Name(),
		OrderID:     order.ID,
		AmountCents: order.Amount,
		Currency:    order.Currency,
	}, nil
}

// VerifyClientProof checks HMAC-SHA256(key_secret, "order_id|payment_id")
// against the signature the client submitted.
func (g *Razorpay) VerifyClientProof(orderID, paymentID, signature string) bool {
	expected := hmacHex(g.keySecret, []byte(orderID+"|"+paymentID))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type razorpayWebhook struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID       string `json:"id"`
				OrderID  string `json:"order_id"`
				Amount   int64  `json:"amount"`
				Currency string `json:"currency"`
				Notes    struct {
					UserID   string `json:"user_id"`
					PlanCode string `json:"plan_code"`
				} `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// VerifyWebhook authenticates X-Razorpay-Signature, an HMAC-SHA256 of the
// raw body under the webhook secret.
func (g *Razorpay) VerifyWebhook(body []byte, signatureHeader string) (*Event, error) {
	expected := hmacHex(g.webhookSecret, body)
	if !hmac.Equal([]byte(expected), []byte(signatureHeader)) {
		return nil, ErrInvalidSignature
	}

	var wh razorpayWebhook
	if err := json.Unmarshal(body, &wh); err != nil {
		return nil, fmt.Errorf("razorpay webhook: decode: %w", err)
	}

	if wh.Event != "payment.captured" {
		return &Event{Type: EventIgnored}, nil
	}

	entity := wh.Payload.Payment.Entity
	userID, _ := strconv.Atoi(entity.Notes.UserID)

	return &Event{
		ID:          entity.ID,
		Type:        EventPaymentSucceeded,
		PaymentID:   entity.ID,
		OrderID:     entity.OrderID,
		UserID:      userID,
		PlanCode:    entity.Notes.PlanCode,
		AmountCents: entity.Amount,
		Currency:    entity.Currency,
	}, nil
}

func hmacHex(secret string, data []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
