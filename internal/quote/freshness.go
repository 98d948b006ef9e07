package quote

import (
	"log/slog"
	"time"
)

// Fresh reports whether a record updated at updatedAt can still be served at
// now without revalidation. A timestamp in the future means clock skew
// somewhere; such records are served as fresh rather than triggering a
// redundant fetch, but the anomaly is logged.
func Fresh(updatedAt, now time.Time, ttl time.Duration) bool {
	if updatedAt.After(now) {
		slog.Warn("quote: record timestamp is in the future",
			"updatedAt", updatedAt, "now", now, "skew", updatedAt.Sub(now).String())
		return true
	}
	return now.Sub(updatedAt) < ttl
}
