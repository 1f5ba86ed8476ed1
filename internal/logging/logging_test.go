package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelInfo, "text", &buf)

	logger.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected 'test message' in output, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected 'key=value' in output, got: %s", output)
	}
}

func TestNewLoggerWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelInfo, "json", &buf)

	logger.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, `"msg":"test message"`) {
		t.Errorf("expected JSON msg field in output, got: %s", output)
	}
	if !strings.Contains(output, `"key":"value"`) {
		t.Errorf("expected JSON key field in output, got: %s", output)
	}
}

func TestNewLoggerWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelWarn, "text", &buf)

	logger.Info("should not appear")
	logger.Warn("should appear")

	output := buf.String()
	if strings.Contains(output, "should not appear") {
		t.Errorf("INFO message should be filtered at WARN level, got: %s", output)
	}
	if !strings.Contains(output, "should appear") {
		t.Errorf("WARN message should appear at WARN level, got: %s", output)
	}
}

func TestNewLoggerWithWriter_ChildLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelDebug, "text", &buf)
	child := logger.With("component", "listing")

	child.Debug("fetching collection", "resource", "airtime")

	output := buf.String()
	if !strings.Contains(output, "component=listing") {
		t.Errorf("expected component in output, got: %s", output)
	}
	if !strings.Contains(output, "resource=airtime") {
		t.Errorf("expected resource in output, got: %s", output)
	}
}

func TestNewLoggerWithWriter_RedactsSecrets(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(slog.LevelDebug, format, &buf)

		logger.Debug("login", "email", "admin@example.com", "password", "hunter2", "Authorization", "Bearer abc")

		output := buf.String()
		if strings.Contains(output, "hunter2") || strings.Contains(output, "Bearer abc") {
			t.Errorf("%s: secret leaked: %s", format, output)
		}
		if !strings.Contains(output, Redacted) {
			t.Errorf("%s: expected redaction marker, got: %s", format, output)
		}
		if !strings.Contains(output, "admin@example.com") {
			t.Errorf("%s: non-secret attribute dropped: %s", format, output)
		}
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard logger should be disabled at every level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRedactJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"login request", `{"email":"a@b.c","password":"pw"}`, `{"email":"a@b.c","password":"[REDACTED]"}`},
		{"nested token", `{"data":{"Token":"abc","id":1}}`, `{"data":{"Token":"[REDACTED]","id":1}}`},
		{"inside array", `[{"access_token":"x"}]`, `[{"access_token":"[REDACTED]"}]`},
		{"nothing sensitive", `{"data": [1, 2]}`, `{"data": [1, 2]}`},
		{"not json", `upstream timeout`, `upstream timeout`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactJSON([]byte(tt.body)); got != tt.want {
				t.Errorf("RedactJSON(%s) = %s, want %s", tt.body, got, tt.want)
			}
		})
	}
}
