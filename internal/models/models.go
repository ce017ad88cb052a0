package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           int64
	PublicID     uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Session struct {
	ID        int64
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SentEmail is one audit row per receipt dispatch attempt, successes and
// failures alike. Rows are append-only: the application never updates or
// deletes them.
type SentEmail struct {
	ID              int64
	PublicID        uuid.UUID
	UserID          int64
	SentBy          string // operator username, joined from users
	RecipientEmail  string
	RecipientName   string
	PurchaseDate    string
	Edition         string
	Quantity        int
	DigitalLink     string
	DigitalUsername string
	DigitalPassword string
	SentAt          time.Time
	TransactionID   string
	MessageID       string
	Status          string // "success" or "failed"
	ErrorMessage    string
}

type SentEmailCreateParams struct {
	UserID          int64
	RecipientEmail  string
	RecipientName   string
	PurchaseDate    string
	Edition         string
	Quantity        int
	DigitalLink     string
	DigitalUsername string
	DigitalPassword string
	TransactionID   string
	MessageID       string
	Status          string
	ErrorMessage    string
}

// SentEmailQuery filters the audit log. Zero values mean "no filter".
type SentEmailQuery struct {
	Status string // "success", "failed", or "" for all
	Q      string // case-insensitive substring over recipient email/name
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}
