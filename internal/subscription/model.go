package subscription

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

type Subscription struct {
	ID                    int       `db:"id" json:"id"`
	UserID                int       `db:"user_id" json:"user_id"`
	PlanID                int       `db:"plan_id" json:"plan_id"`
	Status                Status    `db:"status" json:"status"`
	CurrentPeriodStart    time.Time `db:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd      time.Time `db:"current_period_end" json:"current_period_end"`
	NextBillingDate       time.Time `db:"next_billing_date" json:"next_billing_date"`
	CancelAtPeriodEnd     bool      `db:"cancel_at_period_end" json:"cancel_at_period_end"`
	GatewayOrderID        *string   `db:"gateway_order_id" json:"-"`
	GatewaySubscriptionID *string   `db:"gateway_subscription_id" json:"-"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// IsEntitled reports whether the subscription still grants paid-tier access
// at the given instant. A canceled subscription stays entitled until its
// paid period runs out; an expired one never is.
func IsEntitled(sub *Subscription, now time.Time) bool {
	if sub == nil {
		return false
	}
	switch sub.Status {
	case StatusActive:
		return true
	case StatusCanceled:
		return sub.CurrentPeriodEnd.After(now)
	default:
		return false
	}
}

// StatusView is the shape returned by GET /subscription/status.
type StatusView struct {
	Active            bool       `json:"active"`
	Plan              string     `json:"plan"`
	Status            string     `json:"status"`
	ExpiresOn         *time.Time `json:"expires_on,omitempty"`
	NextBillingDate   *time.Time `json:"next_billing_date,omitempty"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
}
