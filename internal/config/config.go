package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.onairrc, $XDG_CONFIG_HOME/onair/config.toml, ~/.config/onair/config.toml
func Load() (*Config, error) {
	cfg := Default()

	// Try loading from file
	path := FindConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// FindConfigFile returns the first existing config file path.
func FindConfigFile() string {
	for _, p := range candidatePaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultPath is where 'onair config init' writes a new file.
func DefaultPath() string {
	paths := candidatePaths()
	if len(paths) == 0 {
		return ".onairrc"
	}
	return paths[0]
}

func candidatePaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	paths := []string{
		filepath.Join(home, ".onairrc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return append(paths, filepath.Join(xdgConfig, "onair", "config.toml"))
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Station
	if v := os.Getenv("ONAIR_STATION_STREAM_URL"); v != "" {
		cfg.Station.StreamURL = v
	}
	if v := os.Getenv("ONAIR_STATION_NOW_PLAYING_URL"); v != "" {
		cfg.Station.NowPlayingURL = v
	}
	if v := os.Getenv("ONAIR_STATION_POLL_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Station.PollInterval = i
		}
	}

	// Playback
	if v := os.Getenv("ONAIR_PLAYBACK_VOLUME"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Playback.Volume = i
		}
	}

	// Podcasts
	if v := os.Getenv("ONAIR_PODCASTS_FEEDS"); v != "" {
		var feeds []string
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				feeds = append(feeds, f)
			}
		}
		cfg.Podcasts.Feeds = feeds
	}

	// Audio
	if v := os.Getenv("ONAIR_AUDIO_BACKEND"); v != "" {
		cfg.Audio.Backend = v
	}

	// Media session
	if v := os.Getenv("ONAIR_MEDIA_SESSION_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MediaSession.Enabled = b
		}
	}

	// Log
	if v := os.Getenv("ONAIR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ONAIR_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
