package subscription

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrNoActiveSubscription = errors.New("no active subscription")

const subscriptionColumns = `id, user_id, plan_id, status, current_period_start, current_period_end,
	       next_billing_date, cancel_at_period_end, gateway_order_id, gateway_subscription_id,
	       created_at, updated_at`

type SQLRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// CurrentForUser returns the newest subscription row for the user. Historical
// rows may accumulate; the newest one is the single authoritative record.
func (r *SQLRepository) CurrentForUser(ctx context.Context, userID int) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveSubscription
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *SQLRepository) FindByGatewayOrderID(ctx context.Context, orderID string) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE gateway_order_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveSubscription
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *SQLRepository) FindByGatewaySubscriptionID(ctx context.Context, gatewaySubID string) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE gateway_subscription_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, gatewaySubID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveSubscription
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Cancel flips the user's active subscription to canceled with
// cancel_at_period_end set. The row keeps granting access until the period
// runs out; the sweep expires it afterwards.
func (r *SQLRepository) Cancel(ctx context.Context, userID int) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE subscriptions
		SET status = 'canceled',
		    cancel_at_period_end = TRUE,
		    updated_at = NOW()
		WHERE id = (
			SELECT id FROM subscriptions
			WHERE user_id = $1 AND status = 'active'
			ORDER BY created_at DESC
			LIMIT 1
		)
		RETURNING `+subscriptionColumns+`
	`, userID).StructScan(sub)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveSubscription
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// SweepExpired flips canceled subscriptions whose paid period has elapsed to
// expired, and downgrades the owning users back to the free tier. The status
// filter makes the sweep idempotent and lets a concurrent renewal win: a row
// renewed back to active no longer matches.
func (r *SQLRepository) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var userIDs []int
	rows, err := tx.QueryxContext(ctx, `
		UPDATE subscriptions
		SET status = 'expired',
		    updated_at = $1
		WHERE status = 'canceled'
		  AND current_period_end < $1
		RETURNING user_id
	`, now)
	if err != nil {
		return 0, err
	}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	rows.Close()

	if len(userIDs) > 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET plan = 'free', updated_at = $1
			WHERE id = ANY($2)
		`, now, pq.Array(userIDs))
		if err != nil {
			return 0, err
		}
	}

	return len(userIDs), tx.Commit()
}
