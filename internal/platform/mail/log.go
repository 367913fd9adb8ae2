package mail

import (
	"context"

	"safecommute/internal/logging"
)

// LogMailer stands in for SendGrid when no API key is configured. It logs the
// message and reports success, which keeps local runs mail-free.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (l *LogMailer) Send(ctx context.Context, msg Message) error {
	l.log.Info(ctx, "mail suppressed (no sendgrid key configured)", "to", msg.To, "subject", msg.Subject)
	return nil
}
