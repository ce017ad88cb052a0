package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/magpress/receipts/internal/audit"
	"github.com/magpress/receipts/internal/receipt"
	"github.com/magpress/receipts/internal/web/middleware"
	"github.com/magpress/receipts/internal/web/render"
)

// SendHandler serves the single and bulk receipt-send pages.
type SendHandler struct {
	dispatcher    *receipt.Dispatcher
	audit         *audit.Writer
	maxCSVBytes   int64
	render        *render.Renderer
	secureCookies bool
}

// NewSendHandler creates a new SendHandler. maxCSVBytes caps accepted bulk
// uploads.
func NewSendHandler(dispatcher *receipt.Dispatcher, auditWriter *audit.Writer, maxCSVBytes int64, r *render.Renderer, secureCookies bool) *SendHandler {
	return &SendHandler{
		dispatcher:    dispatcher,
		audit:         auditWriter,
		maxCSVBytes:   maxCSVBytes,
		render:        r,
		secureCookies: secureCookies,
	}
}

// ShowSendSingle renders the single-receipt form.
func (h *SendHandler) ShowSendSingle(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "send_single.html")
}

// HandleSendSingle processes the single-receipt form submission. Gateway
// attempts are audit-logged whether they succeed or fail; form validation
// rejects are not, since no dispatch was attempted.
func (h *SendHandler) HandleSendSingle(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		setFlashError(w, "Invalid form data.", h.secureCookies)
		http.Redirect(w, r, "/send-single", http.StatusSeeOther)
		return
	}

	row, err := rowFromForm(r)
	if err != nil {
		setFlashError(w, err.Error(), h.secureCookies)
		http.Redirect(w, r, "/send-single", http.StatusSeeOther)
		return
	}
	if problems := row.Problems(); len(problems) > 0 {
		setFlashError(w, "Invalid input: "+strings.Join(problems, "; ")+".", h.secureCookies)
		http.Redirect(w, r, "/send-single", http.StatusSeeOther)
		return
	}

	outcome := h.dispatcher.Dispatch(r.Context(), row)
	h.audit.Record(r.Context(), user.ID, row, outcome)

	if outcome.Success {
		setFlashSuccess(w, "Email successfully sent to "+row.Email, h.secureCookies)
	} else {
		setFlashError(w, "Failed to send email: "+outcome.ErrorMessage, h.secureCookies)
	}
	http.Redirect(w, r, "/send-single", http.StatusSeeOther)
}

// ShowSendBulk renders the CSV upload form.
func (h *SendHandler) ShowSendBulk(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "send_bulk.html")
}

// HandleSendBulk accepts a CSV upload and dispatches one receipt per data
// row, recording one audit row per outcome.
func (h *SendHandler) HandleSendBulk(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxCSVBytes)
	if err := r.ParseMultipartForm(h.maxCSVBytes); err != nil {
		setFlashError(w, "CSV file is too large or the upload is malformed.", h.secureCookies)
		http.Redirect(w, r, "/send-bulk", http.StatusSeeOther)
		return
	}

	file, header, err := r.FormFile("csv_file")
	if err != nil {
		setFlashError(w, "No file uploaded.", h.secureCookies)
		http.Redirect(w, r, "/send-bulk", http.StatusSeeOther)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		setFlashError(w, "No file selected.", h.secureCookies)
		http.Redirect(w, r, "/send-bulk", http.StatusSeeOther)
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		setFlashError(w, "Only CSV files are allowed.", h.secureCookies)
		http.Redirect(w, r, "/send-bulk", http.StatusSeeOther)
		return
	}

	rows, err := receipt.ParseRecipients(file)
	if err != nil {
		slog.Error("failed to parse recipient csv", "filename", header.Filename, "error", err)
		setFlashError(w, "Error processing file. Please check the format.", h.secureCookies)
		http.Redirect(w, r, "/send-bulk", http.StatusSeeOther)
		return
	}

	summary := h.dispatcher.DispatchAll(r.Context(), rows)
	for i, outcome := range summary.Outcomes {
		h.audit.Record(r.Context(), user.ID, rows[i], outcome)
	}

	message := fmt.Sprintf("Bulk email completed: %d sent, %d failed", summary.Sent, summary.Failed)
	if summary.Failed == 0 {
		setFlashSuccess(w, message, h.secureCookies)
	} else {
		setFlashWarning(w, message, h.secureCookies)
	}
	http.Redirect(w, r, "/send-bulk", http.StatusSeeOther)
}

func (h *SendHandler) renderPage(w http.ResponseWriter, r *http.Request, page string) {
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
	h.render.Render(w, r, page, data)
}

// rowFromForm builds a recipient row from the single-send form fields.
func rowFromForm(r *http.Request) (receipt.Row, error) {
	row := receipt.Row{
		Email:        strings.TrimSpace(r.FormValue("email")),
		Name:         strings.TrimSpace(r.FormValue("name")),
		PurchaseDate: strings.TrimSpace(r.FormValue("purchase_date")),
		Quantity:     1,
		Edition:      receipt.NormalizeEdition(r.FormValue("edition")),
	}

	if raw := strings.TrimSpace(r.FormValue("quantity")); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil || qty < 1 {
			return row, fmt.Errorf("invalid quantity %q", raw)
		}
		row.Quantity = qty
	}

	if row.Email != "" {
		if _, err := mail.ParseAddress(row.Email); err != nil {
			return row, fmt.Errorf("invalid email address format")
		}
	}

	if row.Edition == receipt.EditionDigital {
		row.Digital = &receipt.DigitalAccess{
			Link:     strings.TrimSpace(r.FormValue("link")),
			Username: strings.TrimSpace(r.FormValue("username")),
			Password: strings.TrimSpace(r.FormValue("password")),
		}
	}

	return row, nil
}
