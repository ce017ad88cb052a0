package handlers

import (
	"net/http"

	"github.com/magpress/receipts/internal/web/middleware"
	"github.com/magpress/receipts/internal/web/render"
)

// HomeHandler serves the dashboard landing page.
type HomeHandler struct {
	render        *render.Renderer
	secureCookies bool
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(r *render.Renderer, secureCookies bool) *HomeHandler {
	return &HomeHandler{
		render:        r,
		secureCookies: secureCookies,
	}
}

// ShowIndex renders the main dashboard page.
func (h *HomeHandler) ShowIndex(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	data := map[string]interface{}{
		"User": user,
	}
	if msg, msgType := consumeFlash(w, r, h.secureCookies); msg != "" {
		data["Flash"] = msg
		data["FlashType"] = msgType
	}
	h.render.Render(w, r, "index.html", data)
}
