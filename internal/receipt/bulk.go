package receipt

import (
	"context"
	"log/slog"
	"strings"
)

// DispatchAll drives the dispatcher over every row, strictly in input order,
// one row at a time, at most one gateway call per row. Invalid rows are
// recorded as failures without touching the gateway; gateway failures are
// recorded and the batch continues. The returned outcome list is always
// exactly as long as rows, with outcome i corresponding to row i.
func (d *Dispatcher) DispatchAll(ctx context.Context, rows []Row) Summary {
	summary := Summary{
		Outcomes: make([]Outcome, 0, len(rows)),
	}

	for i, row := range rows {
		if problems := row.Problems(); len(problems) > 0 {
			summary.Failed++
			summary.Outcomes = append(summary.Outcomes, Outcome{
				RecipientEmail: row.Email,
				RecipientName:  row.Name,
				ErrorMessage:   "invalid row: " + strings.Join(problems, "; "),
			})
			slog.InfoContext(ctx, "skipping invalid recipient row",
				"row", i+1,
				"problems", strings.Join(problems, "; "),
			)
			continue
		}

		// Pre-assign the attempt ID before the send so a failed row is still
		// individually traceable in the audit log.
		attemptID := NewAttemptID()

		outcome := d.Dispatch(ctx, row)
		outcome.AttemptID = attemptID
		if outcome.TransactionID == "" {
			outcome.TransactionID = attemptID
		}

		if outcome.Success {
			summary.Sent++
		} else {
			summary.Failed++
			slog.WarnContext(ctx, "receipt dispatch failed",
				"row", i+1,
				"recipient", row.Email,
				"error", outcome.ErrorMessage,
			)
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	return summary
}
