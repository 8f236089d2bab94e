package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
}

func TestLoadFrom(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	content := `
[station]
stream_url = "https://radio.example.org/live.aac"

[playback]
volume = 55
autoplay = false

[podcasts]
feeds = ["https://radio.example.org/podcasts/matin.xml"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Station.StreamURL != "https://radio.example.org/live.aac" {
		t.Errorf("StreamURL = %q", cfg.Station.StreamURL)
	}
	if cfg.Playback.Volume != 55 {
		t.Errorf("Volume = %d, want 55", cfg.Playback.Volume)
	}
	if cfg.Playback.Autoplay {
		t.Error("Autoplay = true, want false from file")
	}
	if cfg.Playback.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want default 3", cfg.Playback.MaxRetries)
	}
	if !cfg.MediaSession.Enabled {
		t.Error("MediaSession.Enabled = false, want default true")
	}
	if len(cfg.Podcasts.Feeds) != 1 {
		t.Errorf("Feeds = %v, want one feed", cfg.Podcasts.Feeds)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ONAIR_PLAYBACK_VOLUME", "12")
	t.Setenv("ONAIR_PODCASTS_FEEDS", "https://a.example/feed.xml, https://b.example/feed.xml")
	t.Setenv("ONAIR_MEDIA_SESSION_ENABLED", "false")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.Playback.Volume != 12 {
		t.Errorf("Volume = %d, want 12", cfg.Playback.Volume)
	}
	if len(cfg.Podcasts.Feeds) != 2 || cfg.Podcasts.Feeds[1] != "https://b.example/feed.xml" {
		t.Errorf("Feeds = %v", cfg.Podcasts.Feeds)
	}
	if cfg.MediaSession.Enabled {
		t.Error("MediaSession.Enabled = true, want false")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad volume", func(c *Config) { c.Playback.Volume = 150 }, "volume must be between 0 and 100"},
		{"relative stream", func(c *Config) { c.Station.StreamURL = "/live.mp3" }, "invalid stream_url"},
		{"bad feed", func(c *Config) { c.Podcasts.Feeds = []string{"ftp://x/feed"} }, "invalid feed"},
		{"bad backend", func(c *Config) { c.Audio.Backend = "alsa" }, "invalid backend"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
