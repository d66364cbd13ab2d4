package logx

import "fmt"

// defaultLogger backs the package-level functions. It is configured from the
// environment once at startup; SetLevel adjusts it afterwards.
var defaultLogger = NewLogger(LoadFromEnv())

// SetLevel changes the default logger's minimum severity.
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

// WithField starts an Entry on the default logger with one field.
func WithField(key string, value interface{}) *Entry {
	return defaultLogger.WithField(key, value)
}

// WithFields starts an Entry on the default logger with a set of fields.
func WithFields(fields Fields) *Entry {
	return defaultLogger.WithFields(fields)
}

// WithError starts an Entry on the default logger carrying an error.
func WithError(err error) *Entry {
	return defaultLogger.WithError(err)
}

func Debug(msg string) { defaultLogger.log(LevelDebug, msg, nil, nil, 3) }
func Info(msg string)  { defaultLogger.log(LevelInfo, msg, nil, nil, 3) }
func Warn(msg string)  { defaultLogger.log(LevelWarn, msg, nil, nil, 3) }
func Error(msg string) { defaultLogger.log(LevelError, msg, nil, nil, 3) }
func Fatal(msg string) { defaultLogger.log(LevelFatal, msg, nil, nil, 3) }

func Debugf(format string, args ...interface{}) {
	defaultLogger.log(LevelDebug, fmt.Sprintf(format, args...), nil, nil, 3)
}

func Infof(format string, args ...interface{}) {
	defaultLogger.log(LevelInfo, fmt.Sprintf(format, args...), nil, nil, 3)
}

func Warnf(format string, args ...interface{}) {
	defaultLogger.log(LevelWarn, fmt.Sprintf(format, args...), nil, nil, 3)
}

func Errorf(format string, args ...interface{}) {
	defaultLogger.log(LevelError, fmt.Sprintf(format, args...), nil, nil, 3)
}

func Fatalf(format string, args ...interface{}) {
	defaultLogger.log(LevelFatal, fmt.Sprintf(format, args...), nil, nil, 3)
}
