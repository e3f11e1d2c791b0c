package mailer

import (
	"context"
	"log/slog"
)

// LogMailer writes messages to the log instead of delivering them (local development)
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "mail not delivered (log provider)", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}
