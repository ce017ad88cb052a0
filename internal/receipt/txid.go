package receipt

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const attemptIDPrefix = "TXN-"

// DeriveTransactionID extracts the short transaction identifier shown to the
// operator from a gateway message ID:
//
//   - "<left@right>" yields the part between "<" and the first "@"
//     (Brevo-style IDs like "<ABC123@smtp-relay.mailin.fr>" become "ABC123")
//   - an embedded "[inner]" yields the inner value
//   - anything else is used verbatim
//   - an empty message ID yields no transaction ID
func DeriveTransactionID(messageID string) string {
	if messageID == "" {
		return ""
	}

	if strings.HasPrefix(messageID, "<") {
		if at := strings.Index(messageID, "@"); at > 1 {
			return messageID[1:at]
		}
	}

	if open := strings.Index(messageID, "["); open >= 0 {
		if length := strings.Index(messageID[open+1:], "]"); length >= 0 {
			return messageID[open+1 : open+1+length]
		}
	}

	return messageID
}

// NewAttemptID returns a fresh pre-assigned transaction identifier for one
// bulk row: the fixed prefix plus 12 uppercase hex characters. It is
// generated before the send attempt so even a failed row has a traceable ID.
func NewAttemptID() string {
	b := make([]byte, 6)
	rand.Read(b)
	return attemptIDPrefix + strings.ToUpper(hex.EncodeToString(b))
}
