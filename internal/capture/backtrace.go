package capture

import (
	"fmt"
	"runtime"
	"strings"
)

// BacktraceUnavailable is stored when no call-site frames could be collected.
const BacktraceUnavailable = "[backtrace unavailable]"

const defaultBacktraceDepth = 16

// backtrace collects the caller frames above this package, newline-joined,
// innermost first. Frames inside capture itself and the runtime are elided.
func backtrace(depth int) string {
	pcs := make([]uintptr, depth)
	n := runtime.Callers(2, pcs)
	if n == 0 {
		return BacktraceUnavailable
	}

	frames := runtime.CallersFrames(pcs[:n])
	var lines []string
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !internalFrame(frame.Function) {
			lines = append(lines, fmt.Sprintf("%s (%s:%d)", frame.Function, frame.File, frame.Line))
		}
		if !more {
			break
		}
	}
	if len(lines) == 0 {
		return BacktraceUnavailable
	}
	return strings.Join(lines, "\n")
}

func internalFrame(fn string) bool {
	return strings.Contains(fn, "/internal/capture.") ||
		strings.HasPrefix(fn, "runtime.") ||
		strings.HasPrefix(fn, "net/http.")
}
