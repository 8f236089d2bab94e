package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Station.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("station: %w", err))
	}
	if err := c.Playback.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("playback: %w", err))
	}
	if err := c.Podcasts.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("podcasts: %w", err))
	}
	if err := c.Audio.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("audio: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an absolute http(s) URL", raw)
	}
	return nil
}

// Validate checks StationConfig for errors.
func (c *StationConfig) Validate() error {
	if err := validateHTTPURL(c.StreamURL); err != nil {
		return fmt.Errorf("invalid stream_url: %w", err)
	}
	if c.NowPlayingURL != "" {
		if err := validateHTTPURL(c.NowPlayingURL); err != nil {
			return fmt.Errorf("invalid now_playing_url: %w", err)
		}
	}
	if c.PollInterval < 0 {
		return errors.New("poll_interval must be non-negative")
	}
	return nil
}

// Validate checks PlaybackConfig for errors.
func (c *PlaybackConfig) Validate() error {
	if c.Volume < 0 || c.Volume > 100 {
		return errors.New("volume must be between 0 and 100")
	}
	if c.MaxRetries < 0 {
		return errors.New("max_retries must be non-negative")
	}
	if c.RetryDelayMs < 0 {
		return errors.New("retry_delay_ms must be non-negative")
	}
	return nil
}

// Validate checks PodcastsConfig for errors.
func (c *PodcastsConfig) Validate() error {
	for _, f := range c.Feeds {
		if err := validateHTTPURL(f); err != nil {
			return fmt.Errorf("invalid feed: %w", err)
		}
	}
	if c.Timeout < 0 {
		return errors.New("timeout must be non-negative")
	}
	return nil
}

// Validate checks AudioConfig for errors.
func (c *AudioConfig) Validate() error {
	switch c.Backend {
	case "", "vlc", "null":
		// valid
	default:
		return fmt.Errorf("invalid backend: %s (must be vlc or null)", c.Backend)
	}
	if c.NetworkCaching < 0 {
		return errors.New("network_caching must be non-negative")
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	if c.RefreshInterval < 0 {
		return errors.New("refresh_interval must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
