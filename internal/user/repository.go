package user

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/vasanthanrk/careerboost/internal/db"
)

var ErrUserNotFound = errors.New("user not found")

type SQLRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, fullName, email, passwordHash, role string) (*User, error) {
	query := `
		INSERT INTO users (full_name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, full_name, email, password_hash, role, plan, created_at, updated_at
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, fullName, email, passwordHash, role)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *SQLRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, full_name, email, password_hash, role, plan, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT id, full_name, email, password_hash, role, plan, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *SQLRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *SQLRepository) UpdatePlan(ctx context.Context, userID int, plan string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET plan = $1, updated_at = NOW()
		WHERE id = $2
	`, plan, userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}
