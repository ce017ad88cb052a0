package handlers

import (
	"net/http"
	"time"

	"github.com/magpress/receipts/internal/auth"
	"github.com/magpress/receipts/internal/ratelimit"
	"github.com/magpress/receipts/internal/web/middleware"
	"github.com/magpress/receipts/internal/web/render"
)

// AuthHandler handles HTTP requests for authentication routes.
type AuthHandler struct {
	auth          *auth.Service
	loginLimiter  *ratelimit.Limiter
	render        *render.Renderer
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. The loginLimiter throttles
// password attempts per caller IP; a successful login resets the caller's
// bucket.
func NewAuthHandler(authService *auth.Service, loginLimiter *ratelimit.Limiter, renderer *render.Renderer, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		auth:          authService,
		loginLimiter:  loginLimiter,
		render:        renderer,
		secureCookies: secureCookies,
	}
}

// ShowLogin renders the login page.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if middleware.UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := map[string]interface{}{}
	if msg, msgType := consumeFlash(w, r, h.secureCookies); msg != "" {
		data["Flash"] = msg
		data["FlashType"] = msgType
	}
	h.render.Render(w, r, "login.html", data)
}

// HandleLogin processes the login form submission with per-IP throttling.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ip := middleware.ClientIP(r)
	if !h.loginLimiter.Allow(ip) {
		setFlashError(w, "Too many login attempts. Please try again in a few minutes.", h.secureCookies)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		setFlashError(w, "Invalid form data.", h.secureCookies)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	session, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		setFlashError(w, "Invalid username or password.", h.secureCookies)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.loginLimiter.Reset(ip)

	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	setFlashSuccess(w, "Login successful!", h.secureCookies)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout logs out the current user by deleting their session and clearing the cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("session_token")
	if err == nil && cookie.Value != "" {
		_ = h.auth.Logout(r.Context(), cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	setFlashSuccess(w, "You have been logged out successfully.", h.secureCookies)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
