package email

import (
	"context"

	"jobtracker_backend/internal/logger"
)

// LogSender is used when SMTP is not configured: messages are logged, not sent.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	logger.CtxInfo(ctx, "Email delivery disabled, message dropped", "to", to, "subject", subject, "bytes", len(htmlBody))
	return nil
}
