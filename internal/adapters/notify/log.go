// Package notify delivers notices. Only log delivery is implemented.
package notify

import (
	"context"
	"log/slog"

	"github.com/donamatch/donamatch/internal/core/domain"
	"github.com/donamatch/donamatch/internal/pkg/metrics"
)

// LogNotifier implements ports.NotificationService by writing each notice to
// a structured logger.
type LogNotifier struct {
	from   string
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs notices as sent from from.
func NewLogNotifier(from string, logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{from: from, logger: logger.With("component", "notifier")}
}

// Send logs the notice.
func (n *LogNotifier) Send(ctx context.Context, notice domain.Notice) error {
	n.logger.InfoContext(ctx, "notice",
		"from", n.from,
		"to", notice.To,
		"subject", notice.Subject,
		"body", notice.Body,
	)
	metrics.NotificationsSent.WithLabelValues("log").Inc()
	return nil
}
