package core

// Status is the playback status of the engine.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusError   Status = "error"
)

// PlaybackState is a read-only snapshot of the engine state.
type PlaybackState struct {
	Source          Source  `json:"source"`
	Status          Status  `json:"status"`
	ProgressPercent float64 `json:"progress_percent"`
	DurationSeconds float64 `json:"duration_seconds"`
	VolumePercent   int     `json:"volume_percent"`
	ErrorMessage    string  `json:"error_message,omitempty"`
	RetryCount      int     `json:"retry_count"`
}

// IsPlaying returns true if audio is currently playing.
func (s PlaybackState) IsPlaying() bool {
	return s.Status == StatusPlaying
}

// HasDuration reports whether the current source is finite and seekable.
func (s PlaybackState) HasDuration() bool {
	return s.DurationSeconds > 0
}

// Progress returns the progress percentage, or 0 when no duration is known.
func (s PlaybackState) Progress() float64 {
	if !s.HasDuration() {
		return 0
	}
	return s.ProgressPercent
}

// PositionSeconds returns the absolute playback position.
func (s PlaybackState) PositionSeconds() float64 {
	return s.Progress() / 100 * s.DurationSeconds
}
