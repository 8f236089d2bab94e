// Package playback owns the single audio output and the state machine that
// drives it. Transition is a pure function; Engine serializes operations and
// output events through it and carries out the resulting effects.
package playback

import (
	"fmt"

	"github.com/tessro/onair/internal/audio"
	"github.com/tessro/onair/internal/core"
)

// DefaultMaxRetries bounds consecutive automatic reloads after a failure.
const DefaultMaxRetries = 3

// Machine is the complete playback state, including the bookkeeping that
// PlaybackState does not expose.
type Machine struct {
	Source       core.Source
	Status       core.Status
	Progress     float64
	Duration     float64
	Volume       int
	ErrorMessage string
	RetryCount   int
	MaxRetries   int

	// Gen identifies the most recent load. Output events for any other
	// generation are stale.
	Gen uint64
	// Loaded is true while the output holds the media for Gen.
	Loaded bool
	// Started is true once the output has reported playing for Gen. Outputs
	// may drop seeks that arrive before that.
	Started bool
	// WantPlay records the intent to play once the media is ready.
	WantPlay bool
	// RetryPending is true while a retry timer is armed for Gen.
	RetryPending bool
	// Resuming is true during the reload started by a retry, until the
	// output confirms playback.
	Resuming bool
	// ResumeAt is the track position re-applied once the reloaded media has
	// started and its duration is known.
	ResumeAt float64
}

// NewMachine returns the initial state: live source, idle.
func NewMachine(volume, maxRetries int) Machine {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return Machine{
		Source:     core.LiveSource(),
		Status:     core.StatusIdle,
		Volume:     audio.Clamp(volume, 0, 100),
		MaxRetries: maxRetries,
	}
}

// State returns the read-only snapshot of m.
func (m Machine) State() core.PlaybackState {
	s := core.PlaybackState{
		Source:          m.Source,
		Status:          m.Status,
		DurationSeconds: m.Duration,
		VolumePercent:   m.Volume,
		ErrorMessage:    m.ErrorMessage,
		RetryCount:      m.RetryCount,
	}
	if m.Duration > 0 {
		s.ProgressPercent = m.Progress
	}
	return s
}

func (m Machine) position() float64 {
	if m.Duration <= 0 {
		return 0
	}
	return m.Progress / 100 * m.Duration
}

// Transition applies in to m and returns the next state together with the
// effects the engine must perform, in order.
func Transition(m Machine, in Input) (Machine, []Effect) {
	switch in := in.(type) {
	case SwitchInput:
		return switchSource(m, in.Source)
	case PlayInput:
		return play(m)
	case PauseInput:
		return pause(m)
	case ToggleInput:
		return toggle(m)
	case SeekInput:
		return seek(m, in.Percent)
	case VolumeInput:
		m.Volume = audio.Clamp(in.Percent, 0, 100)
		return m, []Effect{VolumeEffect{Percent: m.Volume}}
	case OutputInput:
		if in.Event.Gen != m.Gen {
			return m, nil
		}
		return outputEvent(m, in.Event)
	case RetryInput:
		return retry(m, in.Gen)
	case LoadFailedInput:
		if in.Gen != m.Gen {
			return m, nil
		}
		return fail(m, in.Err)
	case PlayRejectedInput:
		if in.Gen != m.Gen {
			return m, nil
		}
		if m.Resuming {
			return terminal(m, fmt.Sprintf("playback failed: %s", errText(in.Err)))
		}
		return fail(m, in.Err)
	default:
		return m, nil
	}
}

func switchSource(m Machine, next core.Source) (Machine, []Effect) {
	if next.Equal(m.Source) {
		return toggle(m)
	}

	var effects []Effect
	m, effects = cancelRetry(m, effects)
	m.Source = next
	m.Progress = 0
	m.Duration = 0
	m.RetryCount = 0
	m.ErrorMessage = ""
	m.ResumeAt = 0
	m.Resuming = false
	m.WantPlay = true
	m.Status = core.StatusLoading
	return load(m, effects)
}

func play(m Machine) (Machine, []Effect) {
	switch m.Status {
	case core.StatusPlaying:
		return m, nil

	case core.StatusIdle:
		m.WantPlay = true
		m.Status = core.StatusLoading
		return load(m, nil)

	case core.StatusError:
		m.ErrorMessage = ""
		m.RetryCount = 0
		m.Resuming = false
		m.WantPlay = true
		m.Status = core.StatusLoading
		return load(m, nil)

	case core.StatusLoading:
		m.WantPlay = true
		if !m.RetryPending {
			return m, nil
		}
		var effects []Effect
		m, effects = cancelRetry(m, effects)
		m.RetryCount = 0
		return load(m, effects)

	case core.StatusPaused:
		m.WantPlay = true
		if !m.Loaded {
			m.Status = core.StatusLoading
			if m.Progress >= 100 {
				m.Progress = 0
				m.ResumeAt = 0
			} else if m.Duration > 0 && !m.Source.IsLive() {
				m.ResumeAt = m.position()
			}
			return load(m, nil)
		}
		m.Status = core.StatusPlaying
		return m, []Effect{PlayEffect{Gen: m.Gen}}
	}
	return m, nil
}

func pause(m Machine) (Machine, []Effect) {
	switch m.Status {
	case core.StatusPlaying:
		m.WantPlay = false
		m.Status = core.StatusPaused
		return m, []Effect{PauseEffect{}}

	case core.StatusLoading:
		m.WantPlay = false
		if !m.RetryPending {
			// The load continues and settles in paused once ready.
			return m, nil
		}
		var effects []Effect
		m, effects = cancelRetry(m, effects)
		m.RetryCount = 0
		m.Resuming = false
		m.Status = core.StatusPaused
		return m, effects
	}
	return m, nil
}

func toggle(m Machine) (Machine, []Effect) {
	switch m.Status {
	case core.StatusPlaying:
		return pause(m)
	case core.StatusLoading:
		if m.WantPlay {
			return pause(m)
		}
		return play(m)
	default:
		return play(m)
	}
}

func seek(m Machine, percent float64) (Machine, []Effect) {
	if m.Duration <= 0 {
		return m, nil
	}
	if m.Status != core.StatusPlaying && m.Status != core.StatusPaused {
		return m, nil
	}
	m.Progress = clampPercent(percent)
	pos := m.position()
	if !m.Loaded || !m.Started {
		m.ResumeAt = pos
		return m, nil
	}
	return m, []Effect{SeekEffect{Seconds: pos}}
}

func outputEvent(m Machine, ev audio.Event) (Machine, []Effect) {
	switch ev.Kind {
	case audio.EventReady:
		if ev.Duration > 0 {
			m.Duration = ev.Duration
		}
		m = showResume(m)
		if m.Status != core.StatusLoading {
			return m, nil
		}
		if m.WantPlay {
			m.Status = core.StatusPlaying
			return m, []Effect{PlayEffect{Gen: m.Gen}}
		}
		m.Status = core.StatusPaused
		return m, nil

	case audio.EventPlaying:
		m.Started = true
		if !m.WantPlay {
			return m, nil
		}
		m.Status = core.StatusPlaying
		m.RetryCount = 0
		m.Resuming = false
		m.ErrorMessage = ""
		return applyResume(m, nil)

	case audio.EventPaused:
		// Pauses are always requested by the engine, so the state already
		// reflects them.
		return m, nil

	case audio.EventProgress:
		var effects []Effect
		if ev.Duration > 0 {
			m.Duration = ev.Duration
		}
		if m.ResumeAt > 0 && !m.Source.IsLive() {
			// The position still reflects the start of the reload.
			m = showResume(m)
			if m.Started {
				m, effects = applyResume(m, effects)
			}
			return m, effects
		}
		if m.Duration > 0 && ev.Position >= 0 {
			m.Progress = clampPercent(ev.Position / m.Duration * 100)
		}
		return m, effects

	case audio.EventEnded:
		if m.Source.IsLive() {
			return fail(m, errLiveEnded)
		}
		m.WantPlay = false
		m.Loaded = false
		m.Started = false
		m.ResumeAt = 0
		m.Progress = 100
		m.Status = core.StatusPaused
		return m, nil

	case audio.EventError:
		return fail(m, ev.Err)
	}
	return m, nil
}

// showResume reports the pending resume position as progress.
func showResume(m Machine) Machine {
	if m.ResumeAt > 0 && m.Duration > 0 && !m.Source.IsLive() {
		m.Progress = clampPercent(m.ResumeAt / m.Duration * 100)
	}
	return m
}

// applyResume seeks to the pending resume position. It is only called once
// the output has started, and keeps ResumeAt until the duration is known.
func applyResume(m Machine, effects []Effect) (Machine, []Effect) {
	if m.ResumeAt <= 0 || m.Duration <= 0 || m.Source.IsLive() {
		return m, effects
	}
	m = showResume(m)
	effects = append(effects, SeekEffect{Seconds: m.ResumeAt})
	m.ResumeAt = 0
	return m, effects
}

func retry(m Machine, gen uint64) (Machine, []Effect) {
	if !m.RetryPending || gen != m.Gen {
		return m, nil
	}
	m.RetryPending = false
	m.Resuming = m.WantPlay
	m.Status = core.StatusLoading
	return load(m, nil)
}

// fail runs the retry policy for a failure of the current generation.
func fail(m Machine, err error) (Machine, []Effect) {
	if m.RetryPending || m.Status == core.StatusError {
		return m, nil
	}
	if m.RetryCount >= m.MaxRetries {
		return terminal(m, fmt.Sprintf("playback failed after %d attempts: %s", m.MaxRetries, errText(err)))
	}

	if !m.Source.IsLive() && m.Duration > 0 {
		if pos := m.position(); pos > 0 {
			m.ResumeAt = pos
		}
	}
	m.RetryCount++
	m.Loaded = false
	m.Started = false
	m.Resuming = false
	m.RetryPending = true
	m.Status = core.StatusLoading
	return m, []Effect{
		NoticeEffect{Notice: Notice{
			Kind:    NoticeTransient,
			Message: fmt.Sprintf("Reconnecting… attempt %d/%d", m.RetryCount, m.MaxRetries),
		}},
		ScheduleRetryEffect{Gen: m.Gen, Attempt: m.RetryCount},
	}
}

func terminal(m Machine, msg string) (Machine, []Effect) {
	var effects []Effect
	m, effects = cancelRetry(m, effects)
	m.Status = core.StatusError
	m.ErrorMessage = msg
	m.WantPlay = false
	m.Resuming = false
	m.Loaded = false
	m.Started = false
	return m, append(effects,
		PauseEffect{},
		NoticeEffect{Notice: Notice{Kind: NoticeTerminal, Message: msg}},
	)
}

func load(m Machine, effects []Effect) (Machine, []Effect) {
	m.Gen++
	m.Loaded = true
	m.Started = false
	return m, append(effects, LoadEffect{Gen: m.Gen, Source: m.Source})
}

func cancelRetry(m Machine, effects []Effect) (Machine, []Effect) {
	if !m.RetryPending {
		return m, effects
	}
	m.RetryPending = false
	return m, append(effects, CancelRetryEffect{})
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
