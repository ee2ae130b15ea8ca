// Package logging builds the zap loggers shared by the binding core.
package logging

import (
	"os"

	"go.uber.org/zap"
)

// DebugEnvVar enables development logging when set to any non-empty value.
const DebugEnvVar = "GO_SWIFTBIND_DEBUG"

// Enabled reports whether debug logging was requested through the environment.
func Enabled() bool {
	return os.Getenv(DebugEnvVar) != ""
}

// New returns a development logger when GO_SWIFTBIND_DEBUG is set and a no-op logger
// otherwise.
func New() *zap.Logger {
	if !Enabled() {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
