package payment

import (
	"context"

	"github.com/vasanthanrk/careerboost/internal/subscription"
)

type ActivateParams struct {
	UserID                int
	PlanID                int
	PlanCode              string
	IntervalMonths        int
	GatewayOrderID        string
	GatewaySubscriptionID string
	GatewayPaymentID      string
	AmountCents           int64
	Currency              string
}

type Repository interface {
	// Record appends a single ledger row without touching any subscription.
	Record(ctx context.Context, userID int, subscriptionID *int, gatewayPaymentID string, amountCents int64, currency, status string) (*Payment, error)
	// ActivateSubscription creates a subscription for a verified first
	// payment and records the ledger row in the same transaction.
	ActivateSubscription(ctx context.Context, p ActivateParams) (*subscription.Subscription, error)
	// RenewSubscription records a verified recurring payment and extends the
	// billing period in the same transaction. A replayed gateway payment id
	// returns ErrDuplicatePayment and leaves the period untouched.
	RenewSubscription(ctx context.Context, subscriptionID, userID, intervalMonths int, gatewayPaymentID string, amountCents int64, currency string) (*subscription.Subscription, error)
}
