package plan

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPlanMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func planRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "code", "name", "amount_cents", "currency", "interval_months", "description", "active", "created_at",
	})
}

func TestListActive(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectQuery(`(?s)SELECT .+ FROM subscription_plans\s+WHERE active = TRUE`).
		WillReturnRows(planRows().
			AddRow(1, "pro", "Pro", 49900, "INR", 1, nil, true, time.Now()).
			AddRow(2, "pro_yearly", "Pro Yearly", 299900, "INR", 12, nil, true, time.Now()))

	plans, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "pro", plans[0].Code)
	assert.Equal(t, 12, plans[1].IntervalMonths)
}

func TestFindByCode(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectQuery(`(?s)SELECT .+ FROM subscription_plans\s+WHERE code = \$1`).
		WithArgs("pro").
		WillReturnRows(planRows().AddRow(1, "pro", "Pro", 49900, "INR", 1, nil, true, time.Now()))

	p, err := repo.FindByCode(context.Background(), "pro")
	require.NoError(t, err)
	assert.Equal(t, int64(49900), p.AmountCents)
}

func TestFindByCode_NotFound(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectQuery(`(?s)SELECT .+ FROM subscription_plans\s+WHERE code = \$1`).
		WithArgs("nonexistent").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByCode(context.Background(), "nonexistent")
	require.ErrorIs(t, err, ErrPlanNotFound)
}

func TestCreatePlan(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectQuery("INSERT INTO subscription_plans").
		WithArgs("team", "Team", int64(99900), "INR", 1, "Per-seat team plan").
		WillReturnRows(planRows().AddRow(3, "team", "Team", 99900, "INR", 1, "Per-seat team plan", true, time.Now()))

	p, err := repo.Create(context.Background(), CreatePlanRequest{
		Code:           "team",
		Name:           "Team",
		AmountCents:    99900,
		Currency:       "INR",
		IntervalMonths: 1,
		Description:    "Per-seat team plan",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, p.ID)
	assert.True(t, p.Active)
}

func TestDeactivate(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectExec("UPDATE subscription_plans").
		WithArgs("pro").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "pro"))
}

func TestDeactivate_NotFound(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectExec("UPDATE subscription_plans").
		WithArgs("nonexistent").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), "nonexistent")
	require.ErrorIs(t, err, ErrPlanNotFound)
}
