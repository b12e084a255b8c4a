package notifications

import (
	"context"
	"errors"
	"strings"
)

// Mail is a single HTML message to one recipient.
type Mail struct {
	To          string
	ToName      string
	ReplyTo     string
	ReplyToName string
	Subject     string
	HTML        string
}

func (m Mail) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("missing recipient email")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("missing subject")
	}
	if strings.TrimSpace(m.HTML) == "" {
		return errors.New("missing html body")
	}
	return nil
}

type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

type Settings struct {
	BrevoAPIKey      string
	BrevoSenderEmail string
	BrevoSenderName  string
	BrevoSandbox     bool
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	SenderName       string
}

// NewMailer prefers Brevo, falls back to SMTP and returns nil when neither
// is configured.
func NewMailer(s Settings) Mailer {
	if c := NewBrevoClient(s.BrevoAPIKey, s.BrevoSenderEmail, s.BrevoSenderName, s.BrevoSandbox); c != nil {
		return c
	}
	if c := NewSMTPClient(s.SMTPHost, s.SMTPPort, s.SMTPUser, s.SMTPPass, s.SenderName); c != nil {
		return c
	}
	return nil
}
