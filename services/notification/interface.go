package notification

import "context"

// Notifier delivers a message to a principal. The booking core only depends
// on this fire-and-forget capability; delivery semantics stay out here.
type Notifier interface {
	Send(ctx context.Context, principalID, title, body string, data map[string]string) error
}
