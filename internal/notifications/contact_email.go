package notifications

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"strings"

	"portfolio-backend/internal/messages"
)

const contactNotificationTemplate = `<!DOCTYPE html>
<html>
<body>
  <h2>Nieuw contactbericht</h2>
  <p><strong>Naam:</strong> {{.Name}}</p>
  <p><strong>E-mail:</strong> {{.Email}}</p>
  <p><strong>Bericht:</strong></p>
  <p>{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
</body>
</html>`

var contactNotificationTmpl = template.Must(template.New("contact_notification").Parse(contactNotificationTemplate))

func buildContactNotificationHTML(msg messages.Message) (string, error) {
	data := struct {
		Name  string
		Email string
		Lines []string
	}{
		Name:  msg.Name,
		Email: msg.Email,
		Lines: strings.Split(msg.Message, "\n"),
	}
	var buf bytes.Buffer
	if err := contactNotificationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ContactNotifier mails every new contact message to the site owner, with
// Reply-To set to the visitor.
type ContactNotifier struct {
	mailer Mailer
	to     string
}

// NewContactNotifier returns nil when there is no mailer or no recipient.
func NewContactNotifier(mailer Mailer, to string) *ContactNotifier {
	if mailer == nil || strings.TrimSpace(to) == "" {
		return nil
	}
	return &ContactNotifier{mailer: mailer, to: to}
}

func (n *ContactNotifier) NotifyContact(ctx context.Context, msg messages.Message) error {
	if n == nil {
		return errors.New("contact notifier is nil")
	}
	html, err := buildContactNotificationHTML(msg)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, Mail{
		To:          n.to,
		ReplyTo:     msg.Email,
		ReplyToName: msg.Name,
		Subject:     "Nieuw contactbericht van " + msg.Name,
		HTML:        html,
	})
}
