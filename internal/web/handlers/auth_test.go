package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/magpress/receipts/internal/auth"
	"github.com/magpress/receipts/internal/ratelimit"
)

func newTestAuthHandler(t *testing.T, loginLimiter *ratelimit.Limiter) (*AuthHandler, *auth.Service) {
	t.Helper()
	users := newMockUserStore()
	sessions := newMockSessionStore()
	svc := auth.NewService(users, sessions, 2)

	hash, err := auth.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if _, err := users.CreateUser(context.Background(), "admin", hash); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return NewAuthHandler(svc, loginLimiter, nil, false), svc
}

func postLogin(h *AuthHandler, username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)
	return rec
}

func TestHandleLogin_Success(t *testing.T) {
	h, svc := newTestAuthHandler(t, ratelimit.NewLimiter(1, 5))

	rec := postLogin(h, "admin", "correct-horse")

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_token" {
			token = c.Value
			if !c.HttpOnly {
				t.Error("session cookie must be HttpOnly")
			}
		}
	}
	if token == "" {
		t.Fatal("expected a session_token cookie")
	}
	if _, err := svc.ValidateSession(context.Background(), token); err != nil {
		t.Errorf("issued session should validate: %v", err)
	}

	msg, msgType := flashFrom(t, rec)
	if msg != "Login successful!" || msgType != flashTypeSuccess {
		t.Errorf("unexpected flash %q (%q)", msg, msgType)
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	h, _ := newTestAuthHandler(t, ratelimit.NewLimiter(1, 5))

	rec := postLogin(h, "admin", "wrong")

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect back to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	msg, msgType := flashFrom(t, rec)
	if msg != "Invalid username or password." || msgType != flashTypeError {
		t.Errorf("unexpected flash %q (%q)", msg, msgType)
	}
}

func TestHandleLogin_Throttled(t *testing.T) {
	// Burst of 2 with a negligible refill rate: the third attempt from the
	// same IP must be throttled before credentials are even checked.
	h, _ := newTestAuthHandler(t, ratelimit.NewLimiter(0.001, 2))

	postLogin(h, "admin", "wrong")
	postLogin(h, "admin", "wrong")
	rec := postLogin(h, "admin", "correct-horse")

	msg, _ := flashFrom(t, rec)
	if msg != "Too many login attempts. Please try again in a few minutes." {
		t.Errorf("expected throttle flash, got %q", msg)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_token" {
			t.Error("throttled request must not receive a session")
		}
	}
}

func TestHandleLogin_SuccessResetsLimiter(t *testing.T) {
	limiter := ratelimit.NewLimiter(0.001, 3)
	h, _ := newTestAuthHandler(t, limiter)

	postLogin(h, "admin", "wrong")
	postLogin(h, "admin", "wrong")
	rec := postLogin(h, "admin", "correct-horse")
	if rec.Header().Get("Location") != "/" {
		t.Fatalf("third attempt should still be allowed and succeed, got %q", rec.Header().Get("Location"))
	}

	// The bucket was reset on success, so the operator has a fresh burst.
	rec = postLogin(h, "admin", "wrong")
	msg, _ := flashFrom(t, rec)
	if msg != "Invalid username or password." {
		t.Errorf("expected a fresh bucket after successful login, got flash %q", msg)
	}
}

func TestHandleLogout(t *testing.T) {
	h, svc := newTestAuthHandler(t, ratelimit.NewLimiter(1, 5))

	session, err := svc.Login(context.Background(), "admin", "correct-horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: session.Token})
	rec := httptest.NewRecorder()

	h.HandleLogout(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if _, err := svc.ValidateSession(context.Background(), session.Token); err == nil {
		t.Error("session should be gone after logout")
	}

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_token" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the session cookie to be cleared")
	}
}
