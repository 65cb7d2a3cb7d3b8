// Package wirelog is a tiny structured-logging shim used by
// cmd/wirehttp-dump to report parse/serialize errors with position
// context. The engine packages (parser, serializer, header, ...) never
// log: they have no side channels and report everything through
// returned errors, so this package exists entirely outside that
// boundary.
package wirelog

import (
	"io"
	"log/slog"
	"os"

	"github.com/shapestone/wirehttp/errors"
)

// Logger wraps a slog.Logger with a couple of wirehttp-specific
// convenience methods.
type Logger struct {
	l *slog.Logger
}

// New returns a Logger writing JSON lines to w.
func New(w io.Writer) *Logger {
	return &Logger{l: slog.New(slog.NewJSONHandler(w, nil))}
}

// Default returns a Logger writing to os.Stderr.
func Default() *Logger { return New(os.Stderr) }

// Info logs a structured info-level message.
func (lg *Logger) Info(msg string, args ...any) { lg.l.Info(msg, args...) }

// Warn logs a structured warn-level message.
func (lg *Logger) Warn(msg string, args ...any) { lg.l.Warn(msg, args...) }

// Err logs err at error level, attaching its Kind and byte position
// when err came from the errors package (spec §7).
func (lg *Logger) Err(msg string, err error, args ...any) {
	if err == nil {
		lg.l.Error(msg, args...)
		return
	}
	kind, ok := errors.KindOf(err)
	full := make([]any, 0, len(args)+4)
	full = append(full, args...)
	if ok {
		full = append(full, "kind", kind.String())
	}
	if pe, ok := err.(*errors.Error); ok {
		full = append(full, "op", pe.Op, "pos", pe.Pos)
	}
	full = append(full, "error", err.Error())
	lg.l.Error(msg, full...)
}

// With returns a Logger that prepends the given key/value pairs to
// every subsequent call.
func (lg *Logger) With(args ...any) *Logger {
	return &Logger{l: lg.l.With(args...)}
}
