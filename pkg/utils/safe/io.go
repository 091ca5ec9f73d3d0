// Package safe runs cleanup and response writes whose errors have no caller
// left to handle them. Failures are logged on the request logger.
package safe

import (
	"context"
	"fmt"
	"io"

	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
)

// Close closes c if it is not nil
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("failed to close", "type", fmt.Sprintf("%T", c), "error", err.Error())
	}
}

// Write writes data to w and returns the number of bytes written. A client
// that went away mid-response is the usual cause of an error here.
func Write(ctx context.Context, w io.Writer, data []byte) int {
	if w == nil {
		return 0
	}
	n, err := w.Write(data)
	if err != nil {
		logging.From(ctx).Warn("failed to write response", "written", n, "size", len(data), "error", err.Error())
	}
	return n
}

// Copy streams src into dst and returns the number of bytes copied
func Copy(ctx context.Context, dst io.Writer, src io.Reader) int64 {
	n, err := io.Copy(dst, src)
	if err != nil {
		logging.From(ctx).Warn("failed to copy", "copied", n, "error", err.Error())
	}
	return n
}
