package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"expensio/internal/user"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (email, password, created_at) VALUES ($1, $2, NOW()) RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, u.Email, u.Password).Scan(&u.ID, &u.CreatedAt)
	return errors.Wrap(err, "create user")
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx,
		`SELECT id, email, password, refresh_token, created_at FROM users WHERE email = $1`, email)
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.getOne(ctx,
		`SELECT id, email, password, refresh_token, created_at FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepository) GetByRefreshToken(ctx context.Context, tokenStr string) (*user.User, error) {
	return r.getOne(ctx,
		`SELECT id, email, password, refresh_token, created_at FROM users WHERE refresh_token = $1`, tokenStr)
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	u := &user.User{}
	var refresh sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.Password,
		&refresh,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.RefreshToken = refresh.String
	return u, nil
}

// UpdateRefreshToken stores the latest refresh token for the user, an empty
// string clears it. Last write wins, which is what keeps "one valid refresh
// token per user" true under concurrent logins.
func (r *PostgresUserRepository) UpdateRefreshToken(ctx context.Context, id int64, tokenStr string) error {
	var value sql.NullString
	if tokenStr != "" {
		value = sql.NullString{String: tokenStr, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token = $1 WHERE id = $2`, value, id)
	return errors.Wrap(err, "update refresh token")
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return errors.Wrap(err, "delete user")
}
