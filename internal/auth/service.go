package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magpress/receipts/internal/models"
	"github.com/magpress/receipts/internal/store"
)

// ErrInvalidCredentials is returned for any login failure: unknown username,
// wrong password, or deactivated account. Callers must not distinguish.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service provides authentication business logic.
type Service struct {
	users    store.UserStore
	sessions store.SessionStore
	maxAge   time.Duration
}

// NewService creates a new auth service with the given stores and session max age in hours.
func NewService(users store.UserStore, sessions store.SessionStore, maxAgeHours int) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		maxAge:   time.Duration(maxAgeHours) * time.Hour,
	}
}

// Login authenticates a user by username and password, returning a new
// session. On success the user's last_login timestamp is updated.
func (s *Service) Login(ctx context.Context, username, password string) (*models.Session, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	expiresAt := time.Now().Add(s.maxAge)
	session, err := s.sessions.CreateSession(ctx, token, user.ID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		// Login already succeeded; the stale timestamp is not worth failing over.
		slog.WarnContext(ctx, "failed to update last_login", "user_id", user.ID, "error", err)
	}

	return session, nil
}

// Logout deletes the session identified by the given token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// ValidateSession checks if the given token corresponds to a valid session
// and returns the associated user.
func (s *Service) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	session, err := s.sessions.GetSessionByToken(ctx, token)
	if err != nil {
		return nil, errors.New("invalid session")
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if !user.IsActive {
		return nil, errors.New("account deactivated")
	}

	return user, nil
}

// EnsureAdmin creates the initial operator account when the users table is
// empty. It is a no-op when any user already exists or when username or
// password is blank, so redeploys never clobber provisioned accounts.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	if len(password) < 8 {
		return errors.New("admin password must be at least 8 characters")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	slog.InfoContext(ctx, "created initial admin user", "username", user.Username)
	return nil
}
