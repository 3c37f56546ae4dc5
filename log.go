//go:build !ios && !android && (amd64 || arm64)

package h5go

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// Logger returns the package logger. It is a no-op logger by default.
//
// Release failures are reported at warn level; best-effort introspection
// fallbacks at debug level.
func Logger() *zap.Logger {
	return logger.Load()
}

// SetLogger replaces the package logger. Passing nil restores the no-op logger.
// Handles are closed from finalizers too, so the logger must be safe for
// concurrent use (every zap logger is).
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}
