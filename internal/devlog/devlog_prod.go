//go:build !dev

package devlog

import "log/slog"

// Handler discards everything outside dev builds.
func Handler(level slog.Level) slog.Handler {
	_ = level
	return slog.DiscardHandler
}
