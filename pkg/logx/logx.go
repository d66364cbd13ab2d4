// Package logx provides leveled, structured logging with console and JSON
// output. A process-wide default logger is configured from the environment
// (LOG_LEVEL, LOG_FORMAT, LOG_COLOR, LOG_CALLER) and used through the
// package-level functions; anything needing isolation builds its own Logger
// with NewLogger.
package logx

import (
	"os"
	"strings"
	"time"
)

// Fields is a map of structured log data.
type Fields map[string]interface{}

// Level is a log severity.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
	LevelOff
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL", "OFF"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLevel reads a level name, defaulting to Info on unknown input.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

// Enabled reports whether a message at target severity passes this minimum.
func (l Level) Enabled(target Level) bool {
	return l <= target
}

// Format selects the output encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Config holds logger settings.
type Config struct {
	Level           Level
	Format          Format
	EnableColors    bool // ANSI colors, console format only
	EnableCaller    bool // file:line of the call site
	EnableTimestamp bool
	TimeFormat      string   // defaults to time.RFC3339
	Output          *os.File // defaults to os.Stdout
}

// DefaultConfig returns colored console output at info level.
func DefaultConfig() *Config {
	return &Config{
		Level:           LevelInfo,
		Format:          FormatConsole,
		EnableColors:    true,
		EnableTimestamp: true,
		TimeFormat:      time.RFC3339,
		Output:          os.Stdout,
	}
}

// LoadFromEnv builds a Config from LOG_LEVEL, LOG_FORMAT, LOG_COLOR and
// LOG_CALLER, falling back to defaults for anything unset.
func LoadFromEnv() *Config {
	config := DefaultConfig()

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = ParseLevel(level)
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		if strings.EqualFold(format, string(FormatJSON)) {
			config.Format = FormatJSON
		} else {
			config.Format = FormatConsole
		}
	}
	if color := os.Getenv("LOG_COLOR"); color != "" {
		config.EnableColors = strings.EqualFold(color, "true") || color == "1"
	}
	if caller := os.Getenv("LOG_CALLER"); caller != "" {
		config.EnableCaller = strings.EqualFold(caller, "true") || caller == "1"
	}

	return config
}
