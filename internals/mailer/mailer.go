// Package mailer delivers transactional email through a pluggable provider and
// an asynchronous, retrying dispatcher.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/config"
)

var (
	// ErrNotConfigured is returned when a provider is missing its credentials
	ErrNotConfigured = errors.New("mail provider not configured")
	// ErrSendFailed wraps provider rejections
	ErrSendFailed = errors.New("failed to send email")
)

// Message is one outbound email; HTML is optional
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends a single message synchronously
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the provider selected by cfg.Provider
func New(cfg config.MailConfig, logger *slog.Logger) (Mailer, error) {
	switch cfg.Provider {
	case "smtp":
		return NewSMTPMailer(&SMTPConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			FromName: cfg.FromName,
		}), nil
	case "mailgun":
		return NewMailgunMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.FromName, cfg.User)
	case "sendgrid":
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.FromName, cfg.User)
	case "log":
		return NewLogMailer(logger), nil
	default:
		return nil, fmt.Errorf("unsupported mail provider %q", cfg.Provider)
	}
}
