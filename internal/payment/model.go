package payment

import "time"

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Payment is one append-only ledger row per payment attempt outcome,
// including failures. Rows are never mutated after creation.
type Payment struct {
	ID               int       `db:"id" json:"id"`
	UserID           int       `db:"user_id" json:"user_id"`
	SubscriptionID   *int      `db:"subscription_id" json:"subscription_id,omitempty"`
	GatewayPaymentID string    `db:"gateway_payment_id" json:"gateway_payment_id"`
	AmountCents      int64     `db:"amount_cents" json:"amount_cents"`
	Currency         string    `db:"currency" json:"currency"`
	Status           string    `db:"status" json:"status"`
	PaidAt           time.Time `db:"paid_at" json:"paid_at"`
}

type VerifyRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
	UserID    int    `json:"user_id" binding:"required"`
	PlanCode  string `json:"plan_id" binding:"required"`
}
