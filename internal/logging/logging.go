// Package logging provides the structured logger shared by the VM and
// the tree interpreter; the CLI installs a real one with SetLogger. It
// defaults to a no-op logger so library
// consumers pay nothing unless they opt in.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the package's logger instance, defaulting to a no-op
// logger until SetLogger is called.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the package's logger. Call this before running
// any scripts; changing it mid-execution is not supported.
func SetLogger(l *zap.Logger) {
	logger = l
}
