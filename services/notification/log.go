package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes notifications to the log instead of delivering them.
// Used when no Firebase credentials are configured (local development).
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) Send(ctx context.Context, principalID, title, body string, data map[string]string) error {
	n.Logger.Info("notification",
		zap.String("principalID", principalID),
		zap.String("title", title),
		zap.String("body", body),
	)
	return nil
}
