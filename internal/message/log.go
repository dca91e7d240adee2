package message

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// LogSender logs each message instead of sending it.
type LogSender struct {
	log *zap.SugaredLogger
}

// NewLogSender returns a LogSender writing to l (nil means the global logger).
func NewLogSender(l *zap.SugaredLogger) *LogSender {
	if l == nil {
		l = zap.S()
	}
	return &LogSender{log: l}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, p ContactPayload) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid contact payload: %w", err)
	}
	s.log.Infow("contact message (log sender)",
		"from", p.FromName,
		"email", p.FromEmail,
		"subject", p.Subject,
		"len", len(p.Message),
		"ua", p.UserAgent,
	)
	return OK, nil
}
