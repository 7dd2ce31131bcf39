package notify

import (
	"context"
	"log/slog"

	"campusride/internal/logging"
	"campusride/internal/queue"
)

// Relay drains notifications from a queue and logs each one. It returns
// when ctx is done or the queue channel closes, reporting how many
// notifications it handled.
func Relay(ctx context.Context, q queue.Queue, logger *slog.Logger) (int, error) {
	logger = logging.OrDiscard(logger)
	messages, err := q.Consume(ctx)
	if err != nil {
		return 0, err
	}

	handled := 0
	for msg := range messages {
		n, err := Decode(msg)
		if err != nil {
			logger.Warn("skipping queue message", slog.String("type", msg.Type), slog.Any("error", err))
			continue
		}
		handled++
		logger.Info("notification",
			slog.String("id", n.ID),
			slog.String("level", string(n.Level)),
			slog.String("title", n.Title),
			slog.String("description", n.Description),
			slog.String("user_id", n.UserID),
			slog.Time("at", n.At),
		)
	}
	return handled, nil
}
