package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/magpress/receipts/internal/models"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	user := &models.User{
		PublicID:     uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (public_id, username, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, is_active, created_at, updated_at`,
		user.PublicID, user.Username, user.PasswordHash,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, public_id, username, COALESCE(email, ''), password_hash, is_active, last_login, created_at, updated_at
		 FROM users WHERE username = $1`,
		username,
	))
}

func (s *UserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, public_id, username, COALESCE(email, ''), password_hash, is_active, last_login, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	))
}

func (s *UserStore) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login = $2, updated_at = NOW() WHERE id = $1`,
		id, at,
	)
	return err
}

func (s *UserStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var lastLogin sql.NullTime
	err := row.Scan(
		&user.ID, &user.PublicID, &user.Username, &user.Email, &user.PasswordHash,
		&user.IsActive, &lastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return user, nil
}
