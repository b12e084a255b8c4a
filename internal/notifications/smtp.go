package notifications

import (
	"context"
	"strings"

	"gopkg.in/gomail.v2"
)

type SMTPClient struct {
	dialer     *gomail.Dialer
	from       string
	senderName string
}

// NewSMTPClient sends as the SMTP user. Port 465 switches gomail to implicit TLS.
func NewSMTPClient(host string, port int, user, pass, senderName string) *SMTPClient {
	if strings.TrimSpace(host) == "" || strings.TrimSpace(user) == "" || pass == "" {
		return nil
	}
	if port == 0 {
		port = 587
	}
	if strings.TrimSpace(senderName) == "" {
		senderName = "Portfolio Contact"
	}
	return &SMTPClient{
		dialer:     gomail.NewDialer(host, port, user, pass),
		from:       user,
		senderName: senderName,
	}
}

func (c *SMTPClient) Send(ctx context.Context, mail Mail) error {
	if err := mail.validate(); err != nil {
		return err
	}
	msg := c.message(mail)

	// gomail has no context support; honor cancellation around the dial.
	done := make(chan error, 1)
	go func() { done <- c.dialer.DialAndSend(msg) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *SMTPClient) message(mail Mail) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", c.from, c.senderName)
	msg.SetAddressHeader("To", mail.To, mail.ToName)
	if mail.ReplyTo != "" {
		msg.SetAddressHeader("Reply-To", mail.ReplyTo, mail.ReplyToName)
	}
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/html", mail.HTML)
	return msg
}
