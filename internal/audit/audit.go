// Package audit persists one log row per receipt dispatch outcome and serves
// the filtered views and CSV export over that log. The log is append-only:
// records are written once at dispatch time and never modified.
package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/magpress/receipts/internal/models"
	"github.com/magpress/receipts/internal/receipt"
	"github.com/magpress/receipts/internal/store"
)

// Record statuses persisted on sent_emails rows.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// exportHeader is the fixed column set of the CSV export.
var exportHeader = []string{
	"ID", "Recipient Email", "Recipient Name", "Purchase Date", "Edition",
	"Transaction ID", "Sent At", "Status", "Error Message", "Sent By",
	"Digital Link", "Digital Username", "Digital Password",
}

const exportPageSize = 500

// Writer records dispatch outcomes and serves audit queries.
type Writer struct {
	records store.SentEmailStore
}

// NewWriter creates a Writer over the given record store.
func NewWriter(records store.SentEmailStore) *Writer {
	return &Writer{records: records}
}

// Record persists one audit row for the outcome of a dispatch attempt,
// failures included. A persistence error never propagates: it is logged and
// the caller's batch continues, because the send outcome it describes has
// already happened.
func (w *Writer) Record(ctx context.Context, userID int64, row receipt.Row, outcome receipt.Outcome) {
	status := StatusFailed
	if outcome.Success {
		status = StatusSuccess
	}

	params := models.SentEmailCreateParams{
		UserID:         userID,
		RecipientEmail: outcome.RecipientEmail,
		RecipientName:  outcome.RecipientName,
		PurchaseDate:   row.PurchaseDate,
		Edition:        string(row.Edition),
		Quantity:       row.Quantity,
		TransactionID:  outcome.TransactionID,
		MessageID:      outcome.MessageID,
		Status:         status,
		ErrorMessage:   outcome.ErrorMessage,
	}
	if row.Digital != nil {
		params.DigitalLink = row.Digital.Link
		params.DigitalUsername = row.Digital.Username
		params.DigitalPassword = row.Digital.Password
	}

	if _, err := w.records.CreateSentEmail(ctx, params); err != nil {
		slog.ErrorContext(ctx, "failed to record sent email",
			"recipient", outcome.RecipientEmail,
			"status", status,
			"error", err,
		)
	}
}

// Search returns matching audit rows, newest first, plus the total match
// count for pagination.
func (w *Writer) Search(ctx context.Context, query models.SentEmailQuery) ([]models.SentEmail, int, error) {
	records, err := w.records.SearchSentEmails(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("searching sent emails: %w", err)
	}
	total, err := w.records.CountSentEmails(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("counting sent emails: %w", err)
	}
	return records, total, nil
}

// Export renders every record matching the filters as CSV, newest first. An
// empty result yields the header row alone; identical filters over unchanged
// data yield byte-identical output.
func (w *Writer) Export(ctx context.Context, query models.SentEmailQuery) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("writing export header: %w", err)
	}

	query.Limit = exportPageSize
	query.Offset = 0
	for {
		page, err := w.records.SearchSentEmails(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("searching sent emails for export: %w", err)
		}

		for _, r := range page {
			record := []string{
				strconv.FormatInt(r.ID, 10),
				r.RecipientEmail,
				r.RecipientName,
				r.PurchaseDate,
				r.Edition,
				r.TransactionID,
				r.SentAt.UTC().Format("2006-01-02 15:04:05"),
				r.Status,
				r.ErrorMessage,
				r.SentBy,
				r.DigitalLink,
				r.DigitalUsername,
				r.DigitalPassword,
			}
			if err := cw.Write(record); err != nil {
				return nil, fmt.Errorf("writing export row %d: %w", r.ID, err)
			}
		}

		if len(page) < exportPageSize {
			break
		}
		query.Offset += exportPageSize
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flushing export: %w", err)
	}

	return buf.Bytes(), nil
}
