package mailer

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	FromName string
}

// SMTPMailer delivers through an authenticated SMTP relay (e.g. Gmail on 587)
type SMTPMailer struct {
	Config *SMTPConfig
	// sendMail is smtp.SendMail outside of tests
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(config *SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		Config:   config,
		sendMail: smtp.SendMail,
	}
}

// Send handles the SMTP handshake and delivery. net/smtp takes no context, so
// when ctx ends first Send returns and the transfer is left to finish or time
// out on its own.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.Config.User == "" || m.Config.Password == "" {
		return ErrNotConfigured
	}
	smtpAddr := fmt.Sprintf("%s:%d", m.Config.Host, m.Config.Port)
	auth := smtp.PlainAuth("", m.Config.User, m.Config.Password, m.Config.Host)
	body := m.build(msg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.sendMail(smtpAddr, auth, m.Config.User, []string{msg.To}, body)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%w: smtp %s: %v", ErrSendFailed, smtpAddr, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: smtp %s: %v", ErrSendFailed, smtpAddr, ctx.Err())
	}
}

// build renders RFC 822 headers and body, using CRLF line endings
func (m *SMTPMailer) build(msg Message) []byte {
	from := m.Config.User
	if m.Config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", m.Config.FromName), m.Config.User)
	}

	headers := []string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", msg.To),
		fmt.Sprintf("Subject: %s", mime.QEncoding.Encode("UTF-8", msg.Subject)),
		"MIME-Version: 1.0",
	}

	if msg.HTML == "" {
		headers = append(headers,
			"Content-Type: text/plain; charset=\"UTF-8\"",
			"", // blank line between headers and body
			msg.Text,
		)
		return []byte(strings.Join(headers, "\r\n"))
	}

	boundary := uuid.NewString()
	headers = append(headers,
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", boundary),
		"",
		"--"+boundary,
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		msg.Text,
		"--"+boundary,
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		msg.HTML,
		"--"+boundary+"--",
	)
	return []byte(strings.Join(headers, "\r\n"))
}
