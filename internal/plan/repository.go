package plan

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrPlanNotFound = errors.New("plan not found")

type SQLRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) ListActive(ctx context.Context) ([]*Plan, error) {
	plans := []*Plan{}
	err := r.db.SelectContext(ctx, &plans, `
		SELECT id, code, name, amount_cents, currency, interval_months, description, active, created_at
		FROM subscription_plans
		WHERE active = TRUE
		ORDER BY amount_cents ASC
	`)
	return plans, err
}

func (r *SQLRepository) FindByCode(ctx context.Context, code string) (*Plan, error) {
	p := &Plan{}
	err := r.db.GetContext(ctx, p, `
		SELECT id, code, name, amount_cents, currency, interval_months, description, active, created_at
		FROM subscription_plans
		WHERE code = $1
	`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	return p, err
}

func (r *SQLRepository) FindByID(ctx context.Context, id int) (*Plan, error) {
	p := &Plan{}
	err := r.db.GetContext(ctx, p, `
		SELECT id, code, name, amount_cents, currency, interval_months, description, active, created_at
		FROM subscription_plans
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	return p, err
}

func (r *SQLRepository) Create(ctx context.Context, req CreatePlanRequest) (*Plan, error) {
	p := &Plan{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO subscription_plans (code, name, amount_cents, currency, interval_months, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, code, name, amount_cents, currency, interval_months, description, active, created_at
	`, req.Code, req.Name, req.AmountCents, req.Currency, req.IntervalMonths, req.Description).StructScan(p)

	return p, err
}

// Deactivate soft-disables a plan. Plans referenced by live subscriptions
// are never deleted.
func (r *SQLRepository) Deactivate(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscription_plans
		SET active = FALSE
		WHERE code = $1
	`, code)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPlanNotFound
	}

	return nil
}
