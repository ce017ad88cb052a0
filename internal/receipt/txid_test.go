package receipt

import (
	"regexp"
	"testing"
)

func TestDeriveTransactionID(t *testing.T) {
	tests := []struct {
		name      string
		messageID string
		want      string
	}{
		{"brevo relay id", "<ABC123@smtp-relay.mailin.fr>", "ABC123"},
		{"angle bracket generic", "<XYZ@host>", "XYZ"},
		{"bracketed id", "msg-[TX789]-tail", "TX789"},
		{"plain id used verbatim", "plain-id-42", "plain-id-42"},
		{"angle brackets without at", "<noat>", "<noat>"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTransactionID(tt.messageID); got != tt.want {
				t.Errorf("DeriveTransactionID(%q) = %q, want %q", tt.messageID, got, tt.want)
			}
		})
	}
}

func TestNewAttemptID_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^TXN-[0-9A-F]{12}$`)

	id1 := NewAttemptID()
	if !pattern.MatchString(id1) {
		t.Errorf("attempt ID %q does not match TXN- plus 12 uppercase hex chars", id1)
	}

	id2 := NewAttemptID()
	if id1 == id2 {
		t.Error("expected unique attempt IDs")
	}
}
