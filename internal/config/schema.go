package config

// Config is the root configuration structure.
type Config struct {
	Station      StationConfig      `toml:"station"`
	Playback     PlaybackConfig     `toml:"playback"`
	Podcasts     PodcastsConfig     `toml:"podcasts"`
	Audio        AudioConfig        `toml:"audio"`
	MediaSession MediaSessionConfig `toml:"media_session"`
	TUI          TUIConfig          `toml:"tui"`
	Log          LogConfig          `toml:"log"`
}

// StationConfig describes the live radio stream.
type StationConfig struct {
	Name          string `toml:"name"`
	StreamURL     string `toml:"stream_url"`
	NowPlayingURL string `toml:"now_playing_url"`
	PollInterval  int    `toml:"poll_interval"`
	UseICY        bool   `toml:"use_icy"`
}

// PlaybackConfig holds playback engine settings.
type PlaybackConfig struct {
	Volume       int  `toml:"volume"`
	MaxRetries   int  `toml:"max_retries"`
	RetryDelayMs int  `toml:"retry_delay_ms"`
	Autoplay     bool `toml:"autoplay"`
}

// PodcastsConfig lists the podcast feeds offered in the episode list.
type PodcastsConfig struct {
	Feeds   []string `toml:"feeds"`
	Timeout int      `toml:"timeout"`
}

// AudioConfig selects and tunes the audio output backend.
type AudioConfig struct {
	Backend        string `toml:"backend"`
	NetworkCaching int    `toml:"network_caching"`
	UserAgent      string `toml:"user_agent"`
}

// MediaSessionConfig controls OS media key integration.
type MediaSessionConfig struct {
	Enabled  bool   `toml:"enabled"`
	Identity string `toml:"identity"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
