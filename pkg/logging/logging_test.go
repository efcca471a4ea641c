package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"Warning", slog.LevelWarn},
		{"eRRoR", slog.LevelError},
		{" info ", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"trace", slog.LevelInfo},
		{"info+2", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"Json", FormatJSON},
		{"text", FormatText},
		{"TEXT", FormatText},
		{"", FormatText},
		{"yaml", FormatText}, // unrecognized defaults to text
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseFormat(tt.input)
			if result != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNew_Formats(t *testing.T) {
	var text, js bytes.Buffer

	New(Config{Level: slog.LevelInfo, Format: FormatText, Output: &text}).Info("hello", "key", 1)
	assert.Contains(t, text.String(), "msg=hello")
	assert.Contains(t, text.String(), "key=1")

	New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &js}).Info("hello", "key", 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelWarn, Output: &buf})
	log.Info("dropped")
	log.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_Tee(t *testing.T) {
	var out, tee bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: FormatText, Output: &out, Tee: &tee})

	log.With("component", "api").Info("resource created", "key", 7)

	assert.Contains(t, out.String(), "component=api")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(tee.Bytes(), &rec))
	assert.Equal(t, "resource created", rec["msg"])
	assert.Equal(t, "api", rec["component"])
	assert.InDelta(t, 7, rec["key"], 0)
}

func TestParseConfig(t *testing.T) {
	cfg := ParseConfig("WARN", "Json")
	assert.Equal(t, slog.LevelWarn, cfg.Level)
	assert.Equal(t, FormatJSON, cfg.Format)

	cfg = ParseConfig("bogus", "yaml")
	assert.Equal(t, slog.LevelInfo, cfg.Level)
	assert.Equal(t, FormatText, cfg.Format)
}

func TestNop(t *testing.T) {
	log := Nop()
	require.NotNil(t, log)
	log.Error("discarded")
}
