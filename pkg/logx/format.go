package logx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// LogEntry is a single log line before formatting.
type LogEntry struct {
	Level     Level
	Message   string
	Fields    Fields
	Error     error
	Timestamp time.Time
	Caller    string
}

// Formatter renders a LogEntry into the bytes written to the output.
type Formatter interface {
	Format(entry *LogEntry) ([]byte, error)
}

const (
	colorReset      = "\033[0m"
	colorBoldRed    = "\033[1;31m"
	colorBoldGreen  = "\033[1;32m"
	colorBoldYellow = "\033[1;33m"
	colorBoldCyan   = "\033[1;36m"
	colorGray       = "\033[90m"
)

var levelBadges = map[Level]string{
	LevelDebug: colorBoldCyan + "[DEBUG]" + colorReset,
	LevelInfo:  colorBoldGreen + "[INFO ]" + colorReset,
	LevelWarn:  colorBoldYellow + "[WARN ]" + colorReset,
	LevelError: colorBoldRed + "[ERROR]" + colorReset,
	LevelFatal: colorBoldRed + "[FATAL]" + colorReset,
}

// ConsoleFormatter writes human-readable lines, one per entry. Field keys
// are sorted so output is stable across runs.
type ConsoleFormatter struct {
	EnableColors bool
	TimeFormat   string
}

func (f *ConsoleFormatter) Format(entry *LogEntry) ([]byte, error) {
	var b strings.Builder

	if !entry.Timestamp.IsZero() {
		ts := entry.Timestamp.Format(f.timeFormat())
		if f.EnableColors {
			b.WriteString(colorGray + ts + colorReset)
		} else {
			b.WriteString(ts)
		}
		b.WriteByte(' ')
	}

	b.WriteString(f.badge(entry.Level))
	b.WriteByte(' ')

	if entry.Caller != "" {
		if f.EnableColors {
			b.WriteString(colorGray + entry.Caller + colorReset)
		} else {
			b.WriteString(entry.Caller)
		}
		b.WriteByte(' ')
	}

	b.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
		}
	}

	if entry.Error != nil {
		if f.EnableColors {
			fmt.Fprintf(&b, " %serror=%v%s", colorBoldRed, entry.Error, colorReset)
		} else {
			fmt.Fprintf(&b, " error=%v", entry.Error)
		}
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func (f *ConsoleFormatter) badge(level Level) string {
	if f.EnableColors {
		if badge, ok := levelBadges[level]; ok {
			return badge
		}
	}
	return fmt.Sprintf("[%-5s]", level)
}

func (f *ConsoleFormatter) timeFormat() string {
	if f.TimeFormat != "" {
		return f.TimeFormat
	}
	return time.RFC3339
}

// JSONFormatter writes one JSON object per line, for log collectors.
type JSONFormatter struct {
	TimeFormat string
}

func (f *JSONFormatter) Format(entry *LogEntry) ([]byte, error) {
	record := make(map[string]interface{}, len(entry.Fields)+5)

	record["level"] = entry.Level.String()
	record["message"] = entry.Message

	if !entry.Timestamp.IsZero() {
		tf := f.TimeFormat
		if tf == "" {
			tf = time.RFC3339
		}
		record["timestamp"] = entry.Timestamp.Format(tf)
	}
	if entry.Caller != "" {
		record["caller"] = entry.Caller
	}
	if entry.Error != nil {
		record["error"] = entry.Error.Error()
	}
	for k, v := range entry.Fields {
		record[k] = v
	}

	line, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}
