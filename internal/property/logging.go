package property

import (
	"strings"

	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
)

// LoggingLevel is the verbosity a container is configured with.
type LoggingLevel string

const (
	LoggingLow    LoggingLevel = "low"
	LoggingMedium LoggingLevel = "medium"
	LoggingHigh   LoggingLevel = "high"
)

// LoggingLevels lists the accepted logging levels.
var LoggingLevels = []LoggingLevel{LoggingLow, LoggingMedium, LoggingHigh}

// ParseLoggingLevel validates a cargo.logging value.
func ParseLoggingLevel(s string) (LoggingLevel, error) {
	for _, l := range LoggingLevels {
		if string(l) == s {
			return l, nil
		}
	}

	quoted := make([]string, len(LoggingLevels))
	for i, l := range LoggingLevels {
		quoted[i] = `"` + string(l) + `"`
	}
	return "", errUtils.Newf(errUtils.ErrInvalidProperty,
		"invalid logging level [%s]; valid levels are {%s}", s, strings.Join(quoted, ", "))
}
