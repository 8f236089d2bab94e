package playback

import (
	"github.com/tessro/onair/internal/audio"
	"github.com/tessro/onair/internal/core"
)

// Input is something that happened: a user operation, an output event, a
// fired retry timer or the result of applying an effect.
type Input interface {
	input()
}

// SwitchInput replaces the current source.
type SwitchInput struct {
	Source core.Source
}

// PlayInput, PauseInput and ToggleInput are the transport operations.
type (
	PlayInput   struct{}
	PauseInput  struct{}
	ToggleInput struct{}
)

// SeekInput moves to a percentage of the duration.
type SeekInput struct {
	Percent float64
}

// VolumeInput sets the output volume.
type VolumeInput struct {
	Percent int
}

// OutputInput carries an event reported by the audio output.
type OutputInput struct {
	Event audio.Event
}

// RetryInput is delivered when a scheduled retry fires.
type RetryInput struct {
	Gen uint64
}

// LoadFailedInput reports that the output refused a Load effect.
type LoadFailedInput struct {
	Gen uint64
	Err error
}

// PlayRejectedInput reports that the output refused a Play effect.
type PlayRejectedInput struct {
	Gen uint64
	Err error
}

func (SwitchInput) input()       {}
func (PlayInput) input()         {}
func (PauseInput) input()        {}
func (ToggleInput) input()       {}
func (SeekInput) input()         {}
func (VolumeInput) input()       {}
func (OutputInput) input()       {}
func (RetryInput) input()        {}
func (LoadFailedInput) input()   {}
func (PlayRejectedInput) input() {}
