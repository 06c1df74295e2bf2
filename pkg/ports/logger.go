package ports

import "strings"

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for per-component details such as individual frames and packets.
	LevelDebug LogLevel = iota
	// LevelInfo is for session-level progress.
	LevelInfo
	// LevelWarn is for problems that end a loop but still leave a playable file.
	LevelWarn
	// LevelError is for failures that abort the recording.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a level name, case-insensitively.
// Unknown names map to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger abstracts logging with translatable, printf-style message keys.
type Logger interface {
	// Debug logs component internals (one line per frame, packet, poll...).
	Debug(msg string, args ...interface{})

	// Info logs session progress.
	Info(msg string, args ...interface{})

	// Warn logs recoverable problems, e.g. a capture source failing mid-session.
	Warn(msg string, args ...interface{})

	// Error logs failures that abort the session.
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the component name.
	WithComponent(component string) Logger
}
