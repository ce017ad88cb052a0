// Package gateway wraps outbound transactional email delivery. It exposes a
// single Send operation and maps every failure into one of three shapes:
// not-configured, remote rejection, or transport failure. There are no
// retries here: one attempt per call, and the caller decides what a failure
// means for its batch.
package gateway

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured is returned without any network attempt when the gateway
// is missing its API credential or sender address.
var ErrNotConfigured = errors.New("email gateway not configured: missing API key or sender address")

// RemoteError is an application-level rejection from the remote email API.
type RemoteError struct {
	StatusCode int
	Code       string
	Detail     string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("email API rejected send (%s): %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("email API rejected send (status %d): %s", e.StatusCode, e.Detail)
}

// TransportError is a network-level failure: connection refused, timeout, or
// an unparsable response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("email delivery transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Sender delivers one HTML email per call and returns the provider-assigned
// opaque message identifier. Tests inject a stub that records calls without
// hitting the network.
type Sender interface {
	Send(ctx context.Context, recipientEmail, subject, htmlBody string) (messageID string, err error)
}
