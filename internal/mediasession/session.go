// Package mediasession mirrors the engine onto the OS now-playing surface and
// forwards OS transport controls back into the engine.
package mediasession

import "time"

// Status is the playback status shown by the OS.
type Status string

const (
	StatusStopped Status = "Stopped"
	StatusPlaying Status = "Playing"
	StatusPaused  Status = "Paused"
)

// Metadata describes the current source for the OS surface.
type Metadata struct {
	// ID changes exactly when the source changes.
	ID         uint64
	Live       bool
	Title      string
	Artist     string
	ArtworkURL string
	Length     time.Duration
}

// Handlers receive OS-originated transport intents.
type Handlers struct {
	Play   func()
	Pause  func()
	Toggle func()
}

// Session is an OS media session.
type Session interface {
	SetHandlers(h Handlers)
	SetMetadata(md Metadata) error
	SetStatus(s Status) error
	Close() error
}

// NoopSession is used when no OS integration is available.
type NoopSession struct{}

func (NoopSession) SetHandlers(Handlers) {}

func (NoopSession) SetMetadata(Metadata) error { return nil }

func (NoopSession) SetStatus(Status) error { return nil }

func (NoopSession) Close() error { return nil }
