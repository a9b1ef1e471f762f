//go:build !dev

package devlog

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler_DiscardsEverything(t *testing.T) {
	h := Handler(slog.LevelDebug)
	ctx := context.Background()

	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		assert.False(t, h.Enabled(ctx, level), level.String())
	}
}
