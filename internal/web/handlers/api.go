package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/magpress/receipts/internal/audit"
	"github.com/magpress/receipts/internal/receipt"
	"github.com/magpress/receipts/internal/web/middleware"
)

// APIHandler serves the JSON API: the health check and programmatic single
// sends.
type APIHandler struct {
	dispatcher *receipt.Dispatcher
	audit      *audit.Writer
	configured bool
}

// NewAPIHandler creates a new APIHandler. configured reports whether the
// email gateway has its credential and sender address, for the health check.
func NewAPIHandler(dispatcher *receipt.Dispatcher, auditWriter *audit.Writer, configured bool) *APIHandler {
	return &APIHandler{
		dispatcher: dispatcher,
		audit:      auditWriter,
		configured: configured,
	}
}

// HandleHealth reports service liveness and gateway configuration state.
func (h *APIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "healthy",
		"service":          "email-receipts",
		"brevo_configured": h.configured,
	})
}

type sendEmailRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	PurchaseDate string `json:"purchase_date"`
	Quantity     int    `json:"quantity"`
	Edition      string `json:"edition"`
	Link         string `json:"link"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

// HandleSendEmail sends a single receipt from a JSON request body. The
// attempt is audit-logged like a form submission.
func (h *APIHandler) HandleSendEmail(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"error": "unauthorized"})
		return
	}

	var req sendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid JSON"})
		return
	}

	row := receipt.Row{
		Email:        strings.TrimSpace(req.Email),
		Name:         strings.TrimSpace(req.Name),
		PurchaseDate: strings.TrimSpace(req.PurchaseDate),
		Quantity:     req.Quantity,
		Edition:      receipt.NormalizeEdition(req.Edition),
	}
	if row.Quantity == 0 {
		row.Quantity = 1
	}
	if row.Edition == receipt.EditionDigital {
		row.Digital = &receipt.DigitalAccess{
			Link:     strings.TrimSpace(req.Link),
			Username: strings.TrimSpace(req.Username),
			Password: strings.TrimSpace(req.Password),
		}
	}

	if problems := row.Problems(); len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request: " + strings.Join(problems, "; "),
		})
		return
	}
	if _, err := mail.ParseAddress(row.Email); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid email format"})
		return
	}

	outcome := h.dispatcher.Dispatch(r.Context(), row)
	h.audit.Record(r.Context(), user.ID, row, outcome)

	if !outcome.Success {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "failed to send email: " + outcome.ErrorMessage,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Email sent successfully",
		"transaction_id": outcome.TransactionID,
	})
}

// writeJSON serialises v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}
