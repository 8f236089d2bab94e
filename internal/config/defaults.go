package config

const (
	// DefaultStreamURL is the station's public Icecast mount.
	DefaultStreamURL = "https://stream.onair.radio/live.mp3"
	// DefaultNowPlayingURL reports the currently airing title.
	DefaultNowPlayingURL = "https://onair.radio/api/now-playing"
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Station: StationConfig{
			Name:          "On Air",
			StreamURL:     DefaultStreamURL,
			NowPlayingURL: DefaultNowPlayingURL,
			PollInterval:  30,
		},
		Playback: PlaybackConfig{
			Volume:       80,
			MaxRetries:   3,
			RetryDelayMs: 2000,
			Autoplay:     true,
		},
		Podcasts: PodcastsConfig{
			Feeds:   []string{},
			Timeout: 10,
		},
		Audio: AudioConfig{
			Backend:        "vlc",
			NetworkCaching: 1500,
			UserAgent:      "onair/1.0",
		},
		MediaSession: MediaSessionConfig{
			Enabled:  true,
			Identity: "On Air",
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Station
	if c.Station.Name == "" {
		c.Station.Name = d.Station.Name
	}
	if c.Station.StreamURL == "" {
		c.Station.StreamURL = d.Station.StreamURL
	}
	if c.Station.NowPlayingURL == "" {
		c.Station.NowPlayingURL = d.Station.NowPlayingURL
	}
	if c.Station.PollInterval == 0 {
		c.Station.PollInterval = d.Station.PollInterval
	}

	// Playback
	if c.Playback.Volume == 0 {
		c.Playback.Volume = d.Playback.Volume
	}
	if c.Playback.MaxRetries == 0 {
		c.Playback.MaxRetries = d.Playback.MaxRetries
	}
	if c.Playback.RetryDelayMs == 0 {
		c.Playback.RetryDelayMs = d.Playback.RetryDelayMs
	}

	// Podcasts
	if c.Podcasts.Feeds == nil {
		c.Podcasts.Feeds = d.Podcasts.Feeds
	}
	if c.Podcasts.Timeout == 0 {
		c.Podcasts.Timeout = d.Podcasts.Timeout
	}

	// Audio
	if c.Audio.Backend == "" {
		c.Audio.Backend = d.Audio.Backend
	}
	if c.Audio.NetworkCaching == 0 {
		c.Audio.NetworkCaching = d.Audio.NetworkCaching
	}
	if c.Audio.UserAgent == "" {
		c.Audio.UserAgent = d.Audio.UserAgent
	}

	// Media session
	if c.MediaSession.Identity == "" {
		c.MediaSession.Identity = c.Station.Name
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
