package email

import (
	"context"

	"go.uber.org/zap"
	"shop-kita.backend/pkg/logger"
)

// LogSender logs outbound mail instead of delivering it. Used in development
// where no SMTP relay is available.
type LogSender struct{}

// NewLogSender creates a new log sender
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Send logs the message
func (s *LogSender) Send(ctx context.Context, to, subject, html, text string) error {
	logger.Info(ctx, "outbound email",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("text", text),
	)
	return nil
}
