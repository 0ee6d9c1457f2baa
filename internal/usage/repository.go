package usage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

const metricColumns = `id, user_id, feature_name, count, created_at, updated_at`

type SQLRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) GetOrCreate(ctx context.Context, userID int, feature string) (*UserMetric, error) {
	m := &UserMetric{}
	err := r.db.GetContext(ctx, m, `
		SELECT `+metricColumns+`
		FROM user_metrics
		WHERE user_id = $1 AND feature_name = $2
	`, userID, feature)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRowxContext(ctx, `
		INSERT INTO user_metrics (user_id, feature_name, count)
		VALUES ($1, $2, 0)
		RETURNING `+metricColumns+`
	`, userID, feature).StructScan(m)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (r *SQLRepository) Increment(ctx context.Context, userID int, feature string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		INSERT INTO user_metrics (user_id, feature_name, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, feature_name)
		DO UPDATE SET count = user_metrics.count + 1, updated_at = NOW()
		RETURNING count
	`, userID, feature)
	return count, err
}

// ConsumeWithinLimit locks the metric row for the duration of the
// check-and-bump so the free-tier cap cannot be exceeded by concurrent
// requests.
func (r *SQLRepository) ConsumeWithinLimit(ctx context.Context, userID int, feature string, limit int) (int, bool, error) {
	if limit <= 0 {
		m, err := r.GetOrCreate(ctx, userID, feature)
		if err != nil {
			return 0, false, err
		}
		return m.Count, false, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowxContext(ctx, `
		SELECT count FROM user_metrics
		WHERE user_id = $1 AND feature_name = $2
		FOR UPDATE
	`, userID, feature).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO user_metrics (user_id, feature_name, count)
			VALUES ($1, $2, 1)
			RETURNING count
		`, userID, feature).Scan(&count)
		if err != nil {
			return 0, false, err
		}
		return count, true, tx.Commit()
	}
	if err != nil {
		return 0, false, err
	}

	if count >= limit {
		return count, false, tx.Commit()
	}

	err = tx.QueryRowxContext(ctx, `
		UPDATE user_metrics
		SET count = count + 1, updated_at = NOW()
		WHERE user_id = $1 AND feature_name = $2
		RETURNING count
	`, userID, feature).Scan(&count)
	if err != nil {
		return 0, false, err
	}

	return count, true, tx.Commit()
}
