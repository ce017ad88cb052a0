package gateway

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
)

// SMTPClient delivers email over plain SMTP for installs that have no Brevo
// API key. SMTP gives no provider message ID back, so the client assigns its
// own Message-Id header and returns it.
type SMTPClient struct {
	host        string
	port        int
	user        string
	pass        string
	senderEmail string
	senderName  string
}

// NewSMTPClient creates a new SMTPClient with the given SMTP server configuration.
func NewSMTPClient(host string, port int, user, pass, senderEmail, senderName string) *SMTPClient {
	return &SMTPClient{
		host:        host,
		port:        port,
		user:        user,
		pass:        pass,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

// Configured reports whether the SMTP host and sender address are present.
func (c *SMTPClient) Configured() bool {
	return c.host != "" && c.senderEmail != ""
}

// smtpSendMail is a seam for tests.
var smtpSendMail = smtp.SendMail

// Send delivers an HTML email to the recipient using SMTP with PlainAuth.
func (c *SMTPClient) Send(_ context.Context, recipientEmail, subject, htmlBody string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	addr := fmt.Sprintf("%s:%d", c.host, c.port)

	var auth smtp.Auth
	if c.user != "" && c.pass != "" {
		auth = smtp.PlainAuth("", c.user, c.pass, c.host)
	}

	domain := c.host
	if at := strings.LastIndex(c.senderEmail, "@"); at >= 0 {
		domain = c.senderEmail[at+1:]
	}
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)

	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"Message-Id: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		c.senderName, c.senderEmail, recipientEmail, subject, messageID,
	)

	msg := []byte(headers + htmlBody)

	if err := smtpSendMail(addr, auth, c.senderEmail, []string{recipientEmail}, msg); err != nil {
		return "", &TransportError{Err: err}
	}

	return messageID, nil
}
