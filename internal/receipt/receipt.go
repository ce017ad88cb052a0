// Package receipt implements the purchase-receipt pipeline: parsing recipient
// rows from CSV, rendering the receipt email for the right edition,
// dispatching it through the email gateway, and producing one outcome per
// input row.
package receipt

import (
	"fmt"
	"strings"
)

// Edition selects the receipt variant. It controls which template renders and
// which optional fields are required.
type Edition string

const (
	EditionPrint   Edition = "print"
	EditionDigital Edition = "digital"
)

// NormalizeEdition maps free-form input onto a valid Edition. The comparison
// is case-insensitive; anything other than "digital" is treated as print.
func NormalizeEdition(raw string) Edition {
	if strings.EqualFold(strings.TrimSpace(raw), string(EditionDigital)) {
		return EditionDigital
	}
	return EditionPrint
}

// DigitalAccess holds the credentials included in a digital-edition receipt.
// A Row carries a non-nil DigitalAccess exactly when its edition is digital.
type DigitalAccess struct {
	Link     string
	Username string
	Password string
}

// Row is one recipient record, parsed from a CSV line or a form submission.
type Row struct {
	Email        string
	Name         string
	PurchaseDate string
	Quantity     int
	Edition      Edition
	Digital      *DigitalAccess

	// parseProblems records defects found while parsing, like an unparsable
	// quantity. They surface as validation failures, never as parser errors,
	// so row alignment is preserved.
	parseProblems []string
}

// Problems returns the list of validation failures for the row, empty when
// the row is valid. A digital row with any credential missing is invalid and
// must never reach the gateway.
func (r Row) Problems() []string {
	problems := append([]string(nil), r.parseProblems...)

	if strings.TrimSpace(r.Email) == "" {
		problems = append(problems, "missing email")
	}
	if strings.TrimSpace(r.Name) == "" {
		problems = append(problems, "missing name")
	}
	if strings.TrimSpace(r.PurchaseDate) == "" {
		problems = append(problems, "missing purchase_date")
	}
	if r.Quantity < 1 {
		problems = append(problems, fmt.Sprintf("invalid quantity %d", r.Quantity))
	}

	if r.Edition == EditionDigital {
		if r.Digital == nil ||
			strings.TrimSpace(r.Digital.Link) == "" ||
			strings.TrimSpace(r.Digital.Username) == "" ||
			strings.TrimSpace(r.Digital.Password) == "" {
			problems = append(problems, "missing digital access credentials")
		}
	}

	return problems
}

// Outcome is the per-recipient result of one dispatch attempt or skipped row.
type Outcome struct {
	RecipientEmail string
	RecipientName  string
	Success        bool
	MessageID      string // gateway-assigned, may be empty on failure
	TransactionID  string // derived from MessageID, or the attempt ID fallback
	AttemptID      string // pre-assigned for validated bulk rows, before the send
	ErrorMessage   string
}

// Summary is the aggregate result of a bulk dispatch. Outcomes is always the
// same length and order as the input rows.
type Summary struct {
	Sent     int
	Failed   int
	Outcomes []Outcome
}
