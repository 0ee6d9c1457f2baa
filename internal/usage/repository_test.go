package usage

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

func setupUsageMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func metricRows(userID int, feature string, count int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "feature_name", "count", "created_at", "updated_at"}).
		AddRow(1, userID, feature, count, time.Now(), nil)
}

func TestGetOrCreate_Existing(t *testing.T) {
	repo, mock, close := setupUsageMock(t)
	defer close()

	mock.ExpectQuery(`(?s)SELECT .+ FROM user_metrics`).
		WithArgs(1, "ai_resume_generate").
		WillReturnRows(metricRows(1, "ai_resume_generate", 2))

	m, err := repo.GetOrCreate(context.Background(), 1, "ai_resume_generate")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Count)
}

func TestGetOrCreate_CreatesAtZero(t *testing.T) {
	repo, mock, close := setupUsageMock(t)
	defer close()

	mock.ExpectQuery(`(?s)SELECT .+ FROM user_metrics`).
		WithArgs(1, "ats_check").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO user_metrics").
		WithArgs(1, "ats_check").
		WillReturnRows(metricRows(1, "ats_check", 0))

	m, err := repo.GetOrCreate(context.Background(), 1, "ats_check")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrement(t *testing.T) {
	repo, mock, close := setupUsageMock(t)
	defer close()

	mock.ExpectQuery("INSERT INTO user_metrics").
		WithArgs(1, "resume_download").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.Increment(context.Background(), 1, "resume_download")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestConsumeWithinLimit_FirstUse(t *testing.T) {
	repo, mock, close := setupUsageMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count FROM user_metrics").
		WithArgs(1, "job_fit_analysis").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO user_metrics").
		WithArgs(1, "job_fit_analysis").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	used, allowed, err := repo.ConsumeWithinLimit(context.Background(), 1, "job_fit_analysis", 3)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, used)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeWithinLimit_BelowLimit(t *testing.T) {
	repo, mock, close := setupUsageMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count FROM user_metrics").
		WithArgs(1, "job_fit_analysis").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("UPDATE user_metrics").
		WithArgs(1, "job_fit_analysis").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectCommit()

	used, allowed, err := repo.ConsumeWithinLimit(context.Background(), 1, "job_fit_analysis", 3)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 3, used)
}

func TestConsumeWithinLimit_AtLimit(t *testing.T) {
	repo, mock, close := setupUsageMock(t)
	defer close()

	// The cap holds: the locked count is already at the limit, so no update
	// runs and the counter stays put.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count FROM user_metrics").
		WithArgs(1, "job_fit_analysis").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectCommit()

	used, allowed, err := repo.ConsumeWithinLimit(context.Background(), 1, "job_fit_analysis", 3)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 3, used)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeWithinLimit_ZeroLimitBlocked(t *testing.T) {
	repo, mock, close := setupUsageMock(t)
	defer close()

	// Unknown features are blocked without ever opening a transaction.
	mock.ExpectQuery(`(?s)SELECT .+ FROM user_metrics`).
		WithArgs(1, "nonexistent_feature").
		WillReturnRows(metricRows(1, "nonexistent_feature", 0))

	used, allowed, err := repo.ConsumeWithinLimit(context.Background(), 1, "nonexistent_feature", 0)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, used)
	require.NoError(t, mock.ExpectationsWereMet())
}
