package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tessro/onair/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"trace", zerolog.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "onair.log")

	logger, closer, err := Setup(config.LogConfig{Level: "debug", File: path}, Options{Quiet: true})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	logger.Debug().Str("source", "live").Msg("switch")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `"source":"live"`) {
		t.Errorf("log file = %q, want structured field", data)
	}
}

func TestSetupQuietWithoutFile(t *testing.T) {
	logger, _, err := Setup(config.LogConfig{Level: "info"}, Options{Quiet: true})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if logger.GetLevel() != zerolog.Disabled {
		t.Errorf("GetLevel() = %v, want disabled logger", logger.GetLevel())
	}
}
