package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/magpress/receipts/internal/audit"
	"github.com/magpress/receipts/internal/models"
	"github.com/magpress/receipts/internal/receipt"
	"github.com/magpress/receipts/internal/web/middleware"
)

// stubSender records gateway calls and returns a canned result.
type stubSender struct {
	messageID string
	err       error
	calls     int
}

func (s *stubSender) Send(_ context.Context, recipientEmail, subject, htmlBody string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.messageID, nil
}

// mockUserStore is an in-memory UserStore for handler tests.
type mockUserStore struct {
	users  map[string]*models.User
	nextID int64
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*models.User), nextID: 1}
}

func (m *mockUserStore) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	u := &models.User{ID: m.nextID, Username: username, PasswordHash: passwordHash, IsActive: true}
	m.nextID++
	m.users[username] = u
	return u, nil
}

func (m *mockUserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (m *mockUserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (m *mockUserStore) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return nil
}

func (m *mockUserStore) CountUsers(ctx context.Context) (int, error) {
	return len(m.users), nil
}

// mockSessionStore is an in-memory SessionStore for handler tests.
type mockSessionStore struct {
	sessions map[string]*models.Session
	nextID   int64
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*models.Session), nextID: 1}
}

func (m *mockSessionStore) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) (*models.Session, error) {
	s := &models.Session{ID: m.nextID, Token: token, UserID: userID, ExpiresAt: expiresAt}
	m.nextID++
	m.sessions[token] = s
	return s, nil
}

func (m *mockSessionStore) GetSessionByToken(ctx context.Context, token string) (*models.Session, error) {
	s, ok := m.sessions[token]
	if !ok || s.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("session not found")
	}
	return s, nil
}

func (m *mockSessionStore) DeleteSession(ctx context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

func (m *mockSessionStore) DeleteExpiredSessions(ctx context.Context) error {
	return nil
}

// mockSentEmailStore captures audit rows written by handlers.
type mockSentEmailStore struct {
	records []models.SentEmail
	nextID  int64
}

func newMockSentEmailStore() *mockSentEmailStore {
	return &mockSentEmailStore{nextID: 1}
}

func (m *mockSentEmailStore) CreateSentEmail(ctx context.Context, params models.SentEmailCreateParams) (*models.SentEmail, error) {
	rec := models.SentEmail{
		ID:              m.nextID,
		UserID:          params.UserID,
		RecipientEmail:  params.RecipientEmail,
		RecipientName:   params.RecipientName,
		PurchaseDate:    params.PurchaseDate,
		Edition:         params.Edition,
		Quantity:        params.Quantity,
		DigitalLink:     params.DigitalLink,
		DigitalUsername: params.DigitalUsername,
		DigitalPassword: params.DigitalPassword,
		TransactionID:   params.TransactionID,
		MessageID:       params.MessageID,
		Status:          params.Status,
		ErrorMessage:    params.ErrorMessage,
		SentAt:          time.Now(),
	}
	m.nextID++
	m.records = append(m.records, rec)
	return &rec, nil
}

func (m *mockSentEmailStore) SearchSentEmails(ctx context.Context, query models.SentEmailQuery) ([]models.SentEmail, error) {
	matched := m.match(query)
	if query.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[query.Offset:]
	if query.Limit > 0 && query.Limit < len(matched) {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

func (m *mockSentEmailStore) CountSentEmails(ctx context.Context, query models.SentEmailQuery) (int, error) {
	return len(m.match(query)), nil
}

func (m *mockSentEmailStore) match(query models.SentEmailQuery) []models.SentEmail {
	var out []models.SentEmail
	for _, rec := range m.records {
		if query.Status != "" && rec.Status != query.Status {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// newTestSendHandler wires a SendHandler over a stub gateway and a mock audit
// store. The renderer is nil: POST handlers redirect and never render.
func newTestSendHandler(t *testing.T, sender *stubSender) (*SendHandler, *mockSentEmailStore) {
	t.Helper()
	dispatcher := receipt.NewDispatcher(sender, "Quarterly Review", "25.00", "MagPress Team")
	store := newMockSentEmailStore()
	h := NewSendHandler(dispatcher, audit.NewWriter(store), 1<<20, nil, false)
	return h, store
}

// withUser attaches an authenticated operator to the request context, as the
// auth middleware would.
func withUser(r *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, user)
	return r.WithContext(ctx)
}

func testUser() *models.User {
	return &models.User{ID: 7, Username: "admin", IsActive: true}
}

// multipartCSV builds a multipart/form-data body with the given CSV content
// under the csv_file field.
func multipartCSV(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("csv_file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write csv content: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// flashFrom reads the flash message and type set on the response.
func flashFrom(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var message, flashType string
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case flashCookieName:
			decoded, err := url.QueryUnescape(c.Value)
			if err != nil {
				t.Fatalf("failed to unescape flash cookie: %v", err)
			}
			message = decoded
		case flashTypeCookieName:
			flashType = c.Value
		}
	}
	return message, flashType
}
