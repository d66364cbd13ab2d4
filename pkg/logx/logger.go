package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Logger writes formatted log lines to a single output. All methods are safe
// for concurrent use.
type Logger struct {
	config    *Config
	formatter Formatter

	mu       sync.Mutex
	writer   io.Writer
	exitFunc func(int)
}

// NewLogger builds a Logger from config, filling in defaults for anything
// left zero.
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.TimeFormat == "" {
		config.TimeFormat = time.RFC3339
	}

	var writer io.Writer = os.Stdout
	if config.Output != nil {
		writer = config.Output
	}

	var formatter Formatter
	if config.Format == FormatJSON {
		formatter = &JSONFormatter{TimeFormat: config.TimeFormat}
	} else {
		formatter = &ConsoleFormatter{
			EnableColors: config.EnableColors,
			TimeFormat:   config.TimeFormat,
		}
	}

	return &Logger{
		config:    config,
		formatter: formatter,
		writer:    writer,
		exitFunc:  os.Exit,
	}
}

// SetLevel changes the minimum severity that gets written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Level = level
}

// SetOutput redirects log output, replacing the configured file.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// log writes one line. depth is the number of stack frames between the
// runtime.Caller call and the original call site, so caller reporting stays
// accurate from both the package functions and Entry methods.
func (l *Logger) log(level Level, msg string, fields Fields, err error, depth int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.config.Level.Enabled(level) {
		return
	}

	entry := &LogEntry{
		Level:   level,
		Message: msg,
		Fields:  fields,
		Error:   err,
	}
	if l.config.EnableTimestamp {
		entry.Timestamp = time.Now()
	}
	if l.config.EnableCaller {
		entry.Caller = caller(depth)
	}

	line, ferr := l.formatter.Format(entry)
	if ferr != nil {
		fmt.Fprintf(os.Stderr, "logx: format failed: %v\n", ferr)
		return
	}
	l.writer.Write(line)

	if level == LevelFatal {
		l.exitFunc(1)
	}
}

// caller walks up skip frames and reports the call site as file:line.
func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// WithField starts an Entry carrying one field.
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return &Entry{logger: l, fields: Fields{key: value}}
}

// WithFields starts an Entry carrying a set of fields.
func (l *Logger) WithFields(fields Fields) *Entry {
	copied := make(Fields, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Entry{logger: l, fields: copied}
}

// WithError starts an Entry carrying an error.
func (l *Logger) WithError(err error) *Entry {
	return &Entry{logger: l, fields: Fields{}, err: err}
}

// Entry accumulates fields and an error before emitting a single log line.
// Entries are cheap and not reused after logging.
type Entry struct {
	logger *Logger
	fields Fields
	err    error
}

// WithField adds one field to the entry.
func (e *Entry) WithField(key string, value interface{}) *Entry {
	e.fields[key] = value
	return e
}

// WithFields adds a set of fields to the entry.
func (e *Entry) WithFields(fields Fields) *Entry {
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// WithError attaches an error to the entry.
func (e *Entry) WithError(err error) *Entry {
	e.err = err
	return e
}

func (e *Entry) emit(level Level, msg string) {
	e.logger.log(level, msg, e.fields, e.err, 4)
}

func (e *Entry) Debug(msg string) { e.emit(LevelDebug, msg) }
func (e *Entry) Info(msg string)  { e.emit(LevelInfo, msg) }
func (e *Entry) Warn(msg string)  { e.emit(LevelWarn, msg) }
func (e *Entry) Error(msg string) { e.emit(LevelError, msg) }
func (e *Entry) Fatal(msg string) { e.emit(LevelFatal, msg) }

func (e *Entry) Debugf(format string, args ...interface{}) {
	e.emit(LevelDebug, fmt.Sprintf(format, args...))
}

func (e *Entry) Infof(format string, args ...interface{}) {
	e.emit(LevelInfo, fmt.Sprintf(format, args...))
}

func (e *Entry) Warnf(format string, args ...interface{}) {
	e.emit(LevelWarn, fmt.Sprintf(format, args...))
}

func (e *Entry) Errorf(format string, args ...interface{}) {
	e.emit(LevelError, fmt.Sprintf(format, args...))
}

func (e *Entry) Fatalf(format string, args ...interface{}) {
	e.emit(LevelFatal, fmt.Sprintf(format, args...))
}
