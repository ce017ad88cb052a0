package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBrevoURL = "https://api.brevo.com/v3/smtp/email"

// BrevoClient sends transactional email through the Brevo (ex Sendinblue)
// HTTP API.
type BrevoClient struct {
	apiKey      string
	apiURL      string
	senderEmail string
	senderName  string
	httpClient  *http.Client
}

// NewBrevoClient returns a Sender backed by Brevo. apiURL may be empty, in
// which case the production endpoint is used.
func NewBrevoClient(apiKey, apiURL, senderEmail, senderName string) *BrevoClient {
	if apiURL == "" {
		apiURL = defaultBrevoURL
	}
	return &BrevoClient{
		apiKey:      apiKey,
		apiURL:      apiURL,
		senderEmail: senderEmail,
		senderName:  senderName,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Configured reports whether both the API key and sender address are present.
func (c *BrevoClient) Configured() bool {
	return c.apiKey != "" && c.senderEmail != ""
}

type brevoParty struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoRequest struct {
	Sender      brevoParty   `json:"sender"`
	To          []brevoParty `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// Send delivers one HTML email via the Brevo API and returns the
// provider-assigned message ID, typically of the form
// "<xxx@smtp-relay.mailin.fr>".
func (c *BrevoClient) Send(ctx context.Context, recipientEmail, subject, htmlBody string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	reqBody := brevoRequest{
		Sender:      brevoParty{Name: c.senderName, Email: c.senderEmail},
		To:          []brevoParty{{Email: recipientEmail}},
		Subject:     subject,
		HTMLContent: htmlBody,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("build request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	var parsed brevoResponse
	if len(respBytes) > 0 {
		if err := json.Unmarshal(respBytes, &parsed); err != nil {
			return "", &TransportError{Err: fmt.Errorf("unmarshal response (status %d): %w", resp.StatusCode, err)}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := parsed.Message
		if detail == "" {
			detail = fmt.Sprintf("%.200s", string(respBytes))
		}
		return "", &RemoteError{
			StatusCode: resp.StatusCode,
			Code:       parsed.Code,
			Detail:     detail,
		}
	}

	return parsed.MessageID, nil
}
