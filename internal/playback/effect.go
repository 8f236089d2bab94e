package playback

import "github.com/tessro/onair/internal/core"

// Effect is an instruction produced by Transition for the engine to carry out.
type Effect interface {
	effect()
}

// LoadEffect assigns a source to the output under a new generation.
type LoadEffect struct {
	Gen    uint64
	Source core.Source
}

// PlayEffect asks the output to start the media loaded for Gen.
type PlayEffect struct {
	Gen uint64
}

// PauseEffect pauses the output.
type PauseEffect struct{}

// SeekEffect moves the output to an absolute position.
type SeekEffect struct {
	Seconds float64
}

// VolumeEffect sets the output volume.
type VolumeEffect struct {
	Percent int
}

// ScheduleRetryEffect arms the retry timer for Gen.
type ScheduleRetryEffect struct {
	Gen     uint64
	Attempt int
}

// CancelRetryEffect disarms the retry timer.
type CancelRetryEffect struct{}

// NoticeEffect surfaces a message to the user.
type NoticeEffect struct {
	Notice Notice
}

func (LoadEffect) effect()          {}
func (PlayEffect) effect()          {}
func (PauseEffect) effect()         {}
func (SeekEffect) effect()          {}
func (VolumeEffect) effect()        {}
func (ScheduleRetryEffect) effect() {}
func (CancelRetryEffect) effect()   {}
func (NoticeEffect) effect()        {}
