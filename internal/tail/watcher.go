package tail

import (
	"context"
	"sync"
	"time"

	"github.com/tessro/onair/internal/core"
	"github.com/tessro/onair/internal/playback"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventSourceChange EventType = iota
	EventLoading
	EventReconnecting
	EventPlaying
	EventPaused
	EventFinished
	EventError
	EventVolumeChange
	EventLiveTitle
	EventNotice
)

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *core.PlaybackState
	Current   *core.PlaybackState
	// Message carries the live title or notice text.
	Message string
}

// Watcher turns engine state snapshots into events.
type Watcher struct {
	updates <-chan core.PlaybackState
	events  chan Event
	now     func() time.Time

	mu     sync.Mutex
	closed bool
}

// NewWatcher creates a watcher reading from updates, typically
// playback.Engine.Updates.
func NewWatcher(updates <-chan core.PlaybackState) *Watcher {
	return &Watcher{
		updates: updates,
		events:  make(chan Event, 32),
		now:     time.Now,
	}
}

// Events returns the channel of playback events. It is closed when Start
// returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start emits events until ctx is done or updates is closed.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.close()

	var prev *core.PlaybackState
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-w.updates:
			if !ok {
				return nil
			}
			curr := s
			for _, e := range diffStates(prev, &curr, w.now()) {
				w.emit(e)
			}
			prev = &curr
		}
	}
}

// LiveTitle reports a new airing title. Safe to call from any goroutine.
func (w *Watcher) LiveTitle(title string) {
	if title == "" {
		return
	}
	w.emit(Event{Type: EventLiveTitle, Timestamp: w.now(), Message: title})
}

// Notice reports a transient playback notice. Terminal notices are already
// covered by EventError. Safe to call under the engine lock.
func (w *Watcher) Notice(n playback.Notice) {
	if n.Kind == playback.NoticeTerminal {
		return
	}
	w.emit(Event{Type: EventNotice, Timestamp: w.now(), Message: n.Message})
}

func (w *Watcher) emit(e Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.events <- e:
	default:
		// Drop event if channel is full
	}
}

func (w *Watcher) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.events)
	}
}

// diffStates compares two states and returns detected events.
func diffStates(prev, curr *core.PlaybackState, now time.Time) []Event {
	if curr == nil {
		return nil
	}

	event := func(t EventType) Event {
		return Event{Type: t, Timestamp: now, Previous: prev, Current: curr}
	}

	// First snapshot - report where we start
	if prev == nil {
		events := []Event{event(EventSourceChange)}
		if e, ok := statusEvent(nil, curr); ok {
			events = append(events, event(e))
		}
		return events
	}

	var events []Event
	if !prev.Source.Equal(curr.Source) {
		events = append(events, event(EventSourceChange))
	}
	if e, ok := statusEvent(prev, curr); ok {
		events = append(events, event(e))
	}
	if prev.VolumePercent != curr.VolumePercent {
		events = append(events, event(EventVolumeChange))
	}
	return events
}

// statusEvent maps a status transition to an event type.
func statusEvent(prev, curr *core.PlaybackState) (EventType, bool) {
	if prev != nil && prev.Status == curr.Status {
		// A further retry attempt is the only repeat worth reporting
		if curr.Status != core.StatusLoading || prev.RetryCount == curr.RetryCount {
			return 0, false
		}
	}

	switch curr.Status {
	case core.StatusLoading:
		if curr.RetryCount > 0 {
			return EventReconnecting, true
		}
		return EventLoading, true
	case core.StatusPlaying:
		return EventPlaying, true
	case core.StatusPaused:
		if wasCompleted(curr) {
			return EventFinished, true
		}
		return EventPaused, true
	case core.StatusError:
		return EventError, true
	}
	return 0, false
}

// wasCompleted returns true if the track ran to its end.
func wasCompleted(state *core.PlaybackState) bool {
	return state.HasDuration() && state.Progress() >= 100
}
