package helpers

import (
	"time"

	"github.com/yigit/campus/internal/pkg/logger"
)

// ParseDuration parses durationStr, falling back to def when it is empty or malformed.
func ParseDuration(durationStr string, def time.Duration) time.Duration {
	if durationStr == "" {
		return def
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		logger.Warn().Err(err).Str("value", durationStr).Dur("default", def).Msg("Invalid duration, using default")
		return def
	}
	return d
}
