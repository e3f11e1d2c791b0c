package mailer

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunMailer delivers through the Mailgun HTTP API
type MailgunMailer struct {
	mg   *mailgun.MailgunImpl
	from string
}

func NewMailgunMailer(domain, apiKey, fromName, fromEmail string) (*MailgunMailer, error) {
	if domain == "" || apiKey == "" || fromEmail == "" {
		return nil, fmt.Errorf("%w: mailgun needs MAILGUN_DOMAIN, MAILGUN_API_KEY and EMAIL_USER", ErrNotConfigured)
	}
	return &MailgunMailer{
		mg:   mailgun.NewMailgun(domain, apiKey),
		from: fmt.Sprintf("%s <%s>", fromName, fromEmail),
	}, nil
}

func (m *MailgunMailer) Send(ctx context.Context, msg Message) error {
	message := m.mg.NewMessage(m.from, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}

	if _, _, err := m.mg.Send(ctx, message); err != nil {
		return fmt.Errorf("%w: mailgun: %v", ErrSendFailed, err)
	}
	return nil
}
