// Package notify delivers non-blocking user-facing notices (karma awards,
// moderation warnings, ban notices). Delivery failures are never allowed to
// fail the calling flow.
package notify

import (
	"context"
	"log/slog"
)

type Notifier interface {
	Notify(ctx context.Context, userID, title, body string)
}

// LogNotifier writes notices to the service log. Used by the daemon until a
// real push channel is wired up.
type LogNotifier struct {
	Logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{Logger: logger.With("system", "notify")}
}

func (n *LogNotifier) Notify(ctx context.Context, userID, title, body string) {
	n.Logger.Info("user notice", "userID", userID, "title", title, "body", body)
}

type Notice struct {
	UserID string
	Title  string
	Body   string
}

// MemNotifier records notices in memory, for tests.
type MemNotifier struct {
	Notices []Notice
}

func NewMemNotifier() *MemNotifier {
	return &MemNotifier{}
}

func (n *MemNotifier) Notify(ctx context.Context, userID, title, body string) {
	n.Notices = append(n.Notices, Notice{UserID: userID, Title: title, Body: body})
}

// ForUser returns recorded notices for a single user.
func (n *MemNotifier) ForUser(userID string) []Notice {
	out := []Notice{}
	for _, nt := range n.Notices {
		if nt.UserID == userID {
			out = append(out, nt)
		}
	}
	return out
}
