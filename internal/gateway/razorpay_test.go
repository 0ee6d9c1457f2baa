package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRazorpayCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(49900), payload["amount"])
		assert.Equal(t, "INR", payload["currency"])

		notes := payload["notes"].(map[string]interface{})
		assert.Equal(t, "1", notes["user_id"])
		assert.Equal(t, "pro", notes["plan_code"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_abc123",
			"amount":   49900,
			"currency": "INR",
			"status":   "created",
		})
	}))
	defer srv.Close()

	g := NewRazorpayWithBaseURL("rzp_test_key", "rzp_test_secret", "whsec", srv.URL)

	intent, err := g.CreateIntent(context.Background(), IntentParams{
		AmountCents: 49900,
		Currency:    "INR",
		UserID:      1,
		PlanCode:    "pro",
	})
	require.NoError(t, err)
	assert.Equal(t, "razorpay", intent.Gateway)
	assert.Equal(t, "order_abc123", intent.OrderID)
	assert.Equal(t, int64(49900), intent.AmountCents)
	assert.Empty(t, intent.CheckoutURL)
}

func TestRazorpayCreateIntent_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewRazorpayWithBaseURL("bad_key", "bad_secret", "whsec", srv.URL)

	_, err := g.CreateIntent(context.Background(), IntentParams{AmountCents: 100, Currency: "INR", UserID: 1, PlanCode: "pro"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 401")
}

func TestRazorpayVerifyClientProof(t *testing.T) {
	g := NewRazorpay("rzp_test_key", "rzp_test_secret", "whsec")

	valid := hmacHex("rzp_test_secret", []byte("order_abc|pay_xyz"))

	assert.True(t, g.VerifyClientProof("order_abc", "pay_xyz", valid))
	assert.False(t, g.VerifyClientProof("order_abc", "pay_xyz", valid[:len(valid)-1]+"0"))
	assert.False(t, g.VerifyClientProof("order_other", "pay_xyz", valid))
	assert.False(t, g.VerifyClientProof("order_abc", "pay_xyz", ""))
}

func TestRazorpayVerifyWebhook(t *testing.T) {
	g := NewRazorpay("key", "secret", "webhook_secret")

	body := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_live_1",
					"order_id": "order_live_1",
					"amount": 49900,
					"currency": "INR",
					"notes": {"user_id": "42", "plan_code": "pro"}
				}
			}
		}
	}`)
	sig := hmacHex("webhook_secret", body)

	ev, err := g.VerifyWebhook(body, sig)
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSucceeded, ev.Type)
	assert.Equal(t, "pay_live_1", ev.PaymentID)
	assert.Equal(t, "order_live_1", ev.OrderID)
	assert.Equal(t, 42, ev.UserID)
	assert.Equal(t, "pro", ev.PlanCode)
	assert.Equal(t, int64(49900), ev.AmountCents)
}

func TestRazorpayVerifyWebhook_BadSignature(t *testing.T) {
	g := NewRazorpay("key", "secret", "webhook_secret")

	body := []byte(`{"event": "payment.captured"}`)
	sig := hmacHex("wrong_secret", body)

	_, err := g.VerifyWebhook(body, sig)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestRazorpayVerifyWebhook_TamperedBody(t *testing.T) {
	g := NewRazorpay("key", "secret", "webhook_secret")

	body := []byte(`{"event": "payment.captured"}`)
	sig := hmacHex("webhook_secret", body)

	tampered := []byte(`{"event": "payment.captured" }`)
	_, err := g.VerifyWebhook(tampered, sig)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestRazorpayVerifyWebhook_IgnoredEvent(t *testing.T) {
	g := NewRazorpay("key", "secret", "webhook_secret")

	body := []byte(`{"event": "payment.failed"}`)
	sig := hmacHex("webhook_secret", body)

	ev, err := g.VerifyWebhook(body, sig)
	require.NoError(t, err)
	assert.Equal(t, EventIgnored, ev.Type)
}
