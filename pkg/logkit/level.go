package logkit

import (
	"strings"

	"github.com/rs/zerolog"
)

type Level = zerolog.Level

const (
	LevelTrace = zerolog.TraceLevel
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelWarn  = zerolog.WarnLevel
	LevelError = zerolog.ErrorLevel

	// LevelCritical is emitted via WithLevel and never calls os.Exit.
	LevelCritical = zerolog.FatalLevel
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ParseLevel maps a severity name to a zerolog level. Unknown or empty names
// fall back to def (the backbone's own tolerance, not an error).
func ParseLevel(s string, def Level) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "CRITICAL", "FATAL":
		return zerolog.FatalLevel
	default:
		return def
	}
}

// levelLabel renders zerolog's lowercase level names the way operators read
// them (WARNING, CRITICAL) rather than zerolog's short forms.
func levelLabel(s string) string {
	switch s {
	case "warn":
		return "WARNING"
	case "fatal", "panic":
		return "CRITICAL"
	default:
		return strings.ToUpper(s)
	}
}
