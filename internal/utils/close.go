package utils

import (
	"io"
	"log/slog"
)

// CloseWithLog closes c and logs any close error instead of returning it.
// Intended for deferred response body cleanup, where a close failure must
// not override the primary error of the surrounding function.
func CloseWithLog(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}
