package core

// Controller is the playback operation set shared by every entry point: the
// footer player, episode list, keyboard layer and OS media controls.
type Controller interface {
	// Source selection
	SwitchSource(next Source) error

	// Playback control
	Play()
	Pause()
	Toggle()
	Seek(percent float64)

	// Volume control
	SetVolume(percent int)

	// State queries
	State() PlaybackState
}
