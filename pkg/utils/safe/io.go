package safe

import (
	"context"
	"io"

	"github.com/secmon-lab/welcomebot/pkg/utils/logging"
)

// Close closes c and logs a failure with the name of the resource. A nil c is
// ignored.
func Close(ctx context.Context, name string, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Error("failed to close", "target", name, "error", err.Error())
	}
}

// Write writes data to w. The response status is already sent at this point,
// so a failure is only logged.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if n, err := w.Write(data); err != nil {
		logging.From(ctx).Error("failed to write response",
			"written", n,
			"size", len(data),
			"error", err.Error(),
		)
	}
}
