package receipt

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMissingHeader is returned when the CSV input has no header row.
var ErrMissingHeader = errors.New("csv input has no header row")

// Recognized CSV column names. Headers are matched case-sensitively, matching
// the documented upload format.
const (
	colEmail        = "email"
	colName         = "name"
	colPurchaseDate = "purchase_date"
	colQuantity     = "quantity"
	colEdition      = "edition"
	colLink         = "link"
	colUsername     = "username"
	colPassword     = "password"
)

// ParseRecipients reads CSV input into an ordered slice of rows, one per data
// line. No row is ever dropped here: rows with defects (such as an unparsable
// quantity) carry the problem through to validation so the outcome list stays
// aligned with the input. Missing columns fall back to defaults: quantity 1,
// edition print.
func ParseRecipients(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, like a dict reader
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	field := func(record []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", len(rows)+2, err)
		}

		row := Row{
			Email:        field(record, colEmail),
			Name:         field(record, colName),
			PurchaseDate: field(record, colPurchaseDate),
			Quantity:     1,
			Edition:      NormalizeEdition(field(record, colEdition)),
		}

		if raw := field(record, colQuantity); raw != "" {
			qty, err := strconv.Atoi(raw)
			if err != nil || qty < 1 {
				row.parseProblems = append(row.parseProblems, fmt.Sprintf("invalid quantity %q", raw))
			} else {
				row.Quantity = qty
			}
		}

		if row.Edition == EditionDigital {
			row.Digital = &DigitalAccess{
				Link:     field(record, colLink),
				Username: field(record, colUsername),
				Password: field(record, colPassword),
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}
