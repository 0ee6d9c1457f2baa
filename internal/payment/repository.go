package payment

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vasanthanrk/careerboost/internal/subscription"
)

// ErrDuplicatePayment means the gateway payment id was already recorded:
// an at-least-once webhook redelivery or a replayed client confirmation.
var ErrDuplicatePayment = errors.New("payment already recorded")

const subscriptionColumns = `id, user_id, plan_id, status, current_period_start, current_period_end,
	       next_billing_date, cancel_at_period_end, gateway_order_id, gateway_subscription_id,
	       created_at, updated_at`

type SQLRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Record(ctx context.Context, userID int, subscriptionID *int, gatewayPaymentID string, amountCents int64, currency, status string) (*Payment, error) {
	p := &Payment{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO payments (user_id, subscription_id, gateway_payment_id, amount_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, subscription_id, gateway_payment_id, amount_cents, currency, status, paid_at
	`, userID, subscriptionID, gatewayPaymentID, amountCents, currency, status).StructScan(p)
	if isUniqueViolation(err) {
		return nil, ErrDuplicatePayment
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ActivateSubscription runs the first-payment transition as one transaction:
// new subscription row, ledger row, and the user's plan tier. The ledger
// insert carries the unique gateway payment id, so a replay rolls the whole
// transaction back without creating a second subscription.
func (r *SQLRepository) ActivateSubscription(ctx context.Context, p ActivateParams) (*subscription.Subscription, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()
	periodEnd := now.AddDate(0, p.IntervalMonths, 0)

	sub := &subscription.Subscription{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO subscriptions (user_id, plan_id, status, current_period_start, current_period_end,
		                           next_billing_date, cancel_at_period_end, gateway_order_id, gateway_subscription_id)
		VALUES ($1, $2, 'active', $3, $4, $4, FALSE, NULLIF($5, ''), NULLIF($6, ''))
		RETURNING `+subscriptionColumns+`
	`, p.UserID, p.PlanID, now, periodEnd, p.GatewayOrderID, p.GatewaySubscriptionID).StructScan(sub)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (user_id, subscription_id, gateway_payment_id, amount_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5, 'success')
	`, p.UserID, sub.ID, p.GatewayPaymentID, p.AmountCents, p.Currency)
	if isUniqueViolation(err) {
		return nil, ErrDuplicatePayment
	}
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET plan = $1, updated_at = NOW()
		WHERE id = $2
	`, p.PlanCode, p.UserID)
	if err != nil {
		return nil, err
	}

	return sub, tx.Commit()
}

// RenewSubscription extends the paid period from the previous period end,
// never from now, so a late webhook cannot shorten a paid period. The ledger
// insert goes first: a duplicate gateway payment id aborts before any
// subscription mutation.
func (r *SQLRepository) RenewSubscription(ctx context.Context, subscriptionID, userID, intervalMonths int, gatewayPaymentID string, amountCents int64, currency string) (*subscription.Subscription, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (user_id, subscription_id, gateway_payment_id, amount_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5, 'success')
	`, userID, subscriptionID, gatewayPaymentID, amountCents, currency)
	if isUniqueViolation(err) {
		return nil, ErrDuplicatePayment
	}
	if err != nil {
		return nil, err
	}

	sub := &subscription.Subscription{}
	err = tx.QueryRowxContext(ctx, `
		UPDATE subscriptions
		SET current_period_start = current_period_end,
		    current_period_end = current_period_end + make_interval(months => $2),
		    next_billing_date = current_period_end + make_interval(months => $2),
		    status = 'active',
		    cancel_at_period_end = FALSE,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+subscriptionColumns+`
	`, subscriptionID, intervalMonths).StructScan(sub)
	if err != nil {
		return nil, err
	}

	return sub, tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
