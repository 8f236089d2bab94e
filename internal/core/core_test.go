package core

import "testing"

func TestSourceEqual(t *testing.T) {
	a := TrackSource("https://x/ep1.mp3", "Ep1")
	b := TrackSource("https://x/ep1.mp3", "Ep1")
	c := TrackSource("https://x/ep2.mp3", "Ep2")

	if !a.Equal(b) {
		t.Error("Equal() = false for identical tracks, want true")
	}
	if a.Equal(c) {
		t.Error("Equal() = true for different tracks, want false")
	}
	if a.Equal(LiveSource()) {
		t.Error("track should not equal live sentinel")
	}
	if !LiveSource().Equal(LiveSource()) {
		t.Error("live sentinel should equal itself")
	}
}

func TestSourceFingerprint(t *testing.T) {
	a := TrackSource("https://x/ep1.mp3", "Ep1")
	b := TrackSource("https://x/ep1.mp3", "Ep1")
	b.Artist = "Feed"

	if a.Fingerprint() == b.Fingerprint() {
		t.Error("Fingerprint() should differ when artist differs")
	}
	if a.Fingerprint() != TrackSource("https://x/ep1.mp3", "Ep1").Fingerprint() {
		t.Error("Fingerprint() should be stable for equal sources")
	}
}

func TestDisplayTitle(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want string
	}{
		{"live", LiveSource(), "En direct"},
		{"titled", TrackSource("https://x/ep1.mp3", "Episode 1"), "Episode 1"},
		{"untitled", TrackSource("https://x/show/ep-42.mp3?cb=1", ""), "ep-42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.src.DisplayTitle(); got != tt.want {
				t.Errorf("DisplayTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProgressWithoutDuration(t *testing.T) {
	s := PlaybackState{ProgressPercent: 40}
	if s.Progress() != 0 {
		t.Errorf("Progress() = %v, want 0 without duration", s.Progress())
	}
	s.DurationSeconds = 200
	if s.Progress() != 40 {
		t.Errorf("Progress() = %v, want 40", s.Progress())
	}
	if s.PositionSeconds() != 80 {
		t.Errorf("PositionSeconds() = %v, want 80", s.PositionSeconds())
	}
}
