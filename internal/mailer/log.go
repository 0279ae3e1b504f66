package mailer

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogSender writes messages to the log instead of sending them. Local development only.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a log-only sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (l *LogSender) Send(_ context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	id := "log-" + uuid.New().String()
	l.logger.Info("email (log provider)",
		zap.String("message_id", id),
		zap.String("from", msg.From),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return id, nil
}
