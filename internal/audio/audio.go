// Package audio defines the single audio primitive the playback engine drives.
// Implementations report progress asynchronously through events tagged with
// the load generation they belong to.
package audio

import "fmt"

// EventKind identifies an output event.
type EventKind int

const (
	EventReady EventKind = iota
	EventPlaying
	EventPaused
	EventProgress
	EventEnded
	EventError
)

var eventNames = map[EventKind]string{
	EventReady:    "ready",
	EventPlaying:  "playing",
	EventPaused:   "paused",
	EventProgress: "progress",
	EventEnded:    "ended",
	EventError:    "error",
}

func (k EventKind) String() string {
	if s, ok := eventNames[k]; ok {
		return s
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is a notification from an output. Gen is the generation passed to the
// Load call the event belongs to.
type Event struct {
	Kind     EventKind
	Gen      uint64
	Position float64 // seconds
	Duration float64 // seconds, 0 when unknown or unbounded
	Err      error
}

// Listener receives output events. Outputs never call it from inside one of
// their own methods.
type Listener func(Event)

// Output is an audio sink for a single URL at a time.
type Output interface {
	// SetListener installs the event receiver. It must be called before Load.
	SetListener(Listener)

	// Load replaces the current media. Events for it carry gen.
	Load(gen uint64, url string) error

	// Play starts or resumes the loaded media. A returned error means the
	// output rejected the request.
	Play() error
	Pause()
	Seek(seconds float64)
	SetVolume(percent int)

	// Stop unloads the media without releasing the output.
	Stop()
	Close() error
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
