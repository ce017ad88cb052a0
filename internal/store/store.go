package store

import (
	"context"
	"time"

	"github.com/magpress/receipts/internal/models"
)

type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	CountUsers(ctx context.Context) (int, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) (*models.Session, error)
	GetSessionByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) error
}

// SentEmailStore is append-only: audit rows are created once at dispatch time
// and only ever read back afterwards.
type SentEmailStore interface {
	CreateSentEmail(ctx context.Context, params models.SentEmailCreateParams) (*models.SentEmail, error)
	SearchSentEmails(ctx context.Context, query models.SentEmailQuery) ([]models.SentEmail, error)
	CountSentEmails(ctx context.Context, query models.SentEmailQuery) (int, error)
}
