package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/magpress/receipts/internal/audit"
	"github.com/magpress/receipts/internal/models"
	"github.com/magpress/receipts/internal/web/middleware"
	"github.com/magpress/receipts/internal/web/render"
)

// perPageChoices are the allowed page sizes for the audit log view.
var perPageChoices = []int{20, 50, 100}

// LogHandler serves the audit log view and its CSV export.
type LogHandler struct {
	audit         *audit.Writer
	render        *render.Renderer
	secureCookies bool
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(auditWriter *audit.Writer, r *render.Renderer, secureCookies bool) *LogHandler {
	return &LogHandler{
		audit:         auditWriter,
		render:        r,
		secureCookies: secureCookies,
	}
}

// ShowLog renders the filtered, paginated audit log, newest first.
func (h *LogHandler) ShowLog(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	query := parseLogQuery(r)
	page, perPage := parsePagination(r)
	query.Limit = perPage
	query.Offset = (page - 1) * perPage

	records, total, err := h.audit.Search(r.Context(), query)
	if err != nil {
		slog.Error("failed to search sent emails", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	data := map[string]interface{}{
		"User":       user,
		"Records":    records,
		"Total":      total,
		"Page":       page,
		"PerPage":    perPage,
		"TotalPages": totalPages,
		"HasPrev":    page > 1,
		"HasNext":    page < totalPages,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
		"Status":     query.Status,
		"Q":          query.Q,
		"FromDate":   r.URL.Query().Get("from"),
		"ToDate":     r.URL.Query().Get("to"),
	}
	if msg, msgType := consumeFlash(w, r, h.secureCookies); msg != "" {
		data["Flash"] = msg
		data["FlashType"] = msgType
	}
	h.render.Render(w, r, "log.html", data)
}

// HandleExport streams the audit log matching the current filters as a CSV
// download. An empty result produces a header-only file, never an error.
func (h *LogHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	query := parseLogQuery(r)
	body, err := h.audit.Export(r.Context(), query)
	if err != nil {
		slog.Error("failed to export sent emails", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sent_receipts.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// parseLogQuery reads the shared filter parameters: status, free-text search,
// and an inclusive sent-at date range.
func parseLogQuery(r *http.Request) models.SentEmailQuery {
	qp := r.URL.Query()

	query := models.SentEmailQuery{
		Q: strings.TrimSpace(qp.Get("q")),
	}
	switch qp.Get("status") {
	case audit.StatusSuccess, audit.StatusFailed:
		query.Status = qp.Get("status")
	}
	if from := parseDateParam(qp.Get("from")); from != nil {
		query.From = from
	}
	if to := parseDateParam(qp.Get("to")); to != nil {
		toExclusive := to.Add(24 * time.Hour)
		query.To = &toExclusive
	}
	return query
}

func parsePagination(r *http.Request) (page, perPage int) {
	qp := r.URL.Query()

	page = 1
	if p, err := strconv.Atoi(qp.Get("page")); err == nil && p > 0 {
		page = p
	}

	perPage = perPageChoices[0]
	if pp, err := strconv.Atoi(qp.Get("per_page")); err == nil {
		for _, choice := range perPageChoices {
			if pp == choice {
				perPage = pp
				break
			}
		}
	}
	return page, perPage
}

func parseDateParam(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil
	}
	return &t
}
