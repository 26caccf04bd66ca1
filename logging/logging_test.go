package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, Config{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Info("hidden")
	log.Warn("price missing", "coin", "solana")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid json log: %v", err)
	}
	if rec["msg"] != "price missing" || rec["coin"] != "solana" {
		t.Errorf("record = %v", rec)
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, DefaultConfig)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Info("portfolio analyzed", "rows", 2)
	if !strings.Contains(buf.String(), "portfolio analyzed") {
		t.Errorf("text log = %q", buf.String())
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{Level: "info", Format: "yaml"}).Validate(); err == nil {
		t.Errorf("Validate() accepted the yaml format")
	}
	if err := DefaultConfig.Validate(); err != nil {
		t.Errorf("DefaultConfig.Validate() error = %v", err)
	}
}
