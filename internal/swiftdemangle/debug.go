package swiftdemangle

import (
	"github.com/blacktop/go-swiftbind/internal/logging"
)

var (
	debugEnabled = logging.Enabled()
	debugLog     = logging.New().Named("swiftdemangle").Sugar()
)

func debugf(format string, args ...interface{}) {
	if debugEnabled {
		debugLog.Debugf(format, args...)
	}
}
