package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newTestLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	logger := NewLogger(&Config{Level: level, Format: format})
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	return logger, &buf
}

func TestConsoleFormat(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug, FormatConsole)

	logger.WithFields(Fields{"turn": 3, "actor": "kael"}).Info("turn resolved")

	got := buf.String()
	want := "[INFO ] turn resolved actor=kael turn=3\n"
	if got != want {
		t.Fatalf("line = %q, want %q", got, want)
	}
}

func TestConsoleFormat_Error(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug, FormatConsole)

	logger.WithError(errors.New("lock lost")).Warn("snapshot skipped")

	got := buf.String()
	if !strings.Contains(got, "[WARN ]") || !strings.Contains(got, "error=lock lost") {
		t.Fatalf("line = %q, want warn badge and error field", got)
	}
}

func TestJSONFormat(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug, FormatJSON)

	logger.WithField("session_id", "s-42").WithError(errors.New("timeout")).Error("provider call failed")

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", record["level"])
	}
	if record["message"] != "provider call failed" {
		t.Errorf("message = %v", record["message"])
	}
	if record["session_id"] != "s-42" {
		t.Errorf("session_id = %v", record["session_id"])
	}
	if record["error"] != "timeout" {
		t.Errorf("error = %v", record["error"])
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(LevelWarn, FormatConsole)

	logger.WithField("k", "v").Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("info line written below warn level: %q", buf.String())
	}

	logger.WithField("k", "v").Warn("written")
	if buf.Len() == 0 {
		t.Fatal("warn line suppressed at warn level")
	}

	logger.SetLevel(LevelOff)
	buf.Reset()
	logger.WithField("k", "v").Error("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("line written at level off: %q", buf.String())
	}
}

func TestFatalCallsExit(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo, FormatConsole)

	exitCode := -1
	logger.exitFunc = func(code int) { exitCode = code }

	logger.WithError(errors.New("no database")).Fatal("cannot start")

	if exitCode != 1 {
		t.Fatalf("exit code = %d, want 1", exitCode)
	}
	if !strings.Contains(buf.String(), "[FATAL]") {
		t.Fatalf("line = %q, want fatal badge", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"fatal", LevelFatal},
		{"off", LevelOff},
		{"garbage", LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_COLOR", "false")

	config := LoadFromEnv()

	if config.Level != LevelError {
		t.Errorf("Level = %v, want LevelError", config.Level)
	}
	if config.Format != FormatJSON {
		t.Errorf("Format = %v, want json", config.Format)
	}
	if config.EnableColors {
		t.Error("EnableColors = true, want false")
	}
}
