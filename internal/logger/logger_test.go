package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{"production uses json", "production", true},
		{"development uses pretty", "development", false},
		{"test uses pretty", "test", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Environment: tt.environment, Writer: &buf, NoColor: true})
			l.Info("hello")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
			} else {
				assert.Contains(t, buf.String(), "INF hello")
			}
		})
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: FormatPretty, Level: slog.LevelWarn, Writer: &buf, NoColor: true})

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WRN shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{" error ", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	h.noColor = true

	log := slog.New(h).With("component", "ranker").WithGroup("req")
	log.Debug("ranked", "user_id", 7, slog.Group("result", "count", 3), "err", errors.New("boom"))

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "DBG ranked")
	assert.Contains(t, line, "component=ranker")
	assert.Contains(t, line, "req.user_id=7")
	assert.Contains(t, line, "req.result.count=3")
	assert.Contains(t, line, "req.err=boom")
}

func TestPrettyHandler_QuotesStringsWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	h.noColor = true

	slog.New(h).Info("tag", "value", "machine learning")
	assert.Contains(t, buf.String(), `value="machine learning"`)
}

func TestPrettyHandler_Colors(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Error("bad")

	require.NotEmpty(t, buf.String())
	assert.Contains(t, buf.String(), colorRed+"ERR"+colorReset)
}

func TestLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: FormatJSON, Writer: &buf})

	l.Component("store").Info("opened")
	assert.Contains(t, buf.String(), `"component":"store"`)
}
