package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogTransport writes messages to the logger instead of delivering them.
// It is the development default when no mail server is configured.
type LogTransport struct {
	log *zap.Logger
}

func NewLogTransport(log *zap.Logger) *LogTransport {
	return &LogTransport{log: log}
}

func (t *LogTransport) Send(_ context.Context, msg Message) error {
	t.log.Info("email (log transport)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("template", string(msg.Template)),
		zap.String("body", msg.HTML),
	)
	return nil
}
