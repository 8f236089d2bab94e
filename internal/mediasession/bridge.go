package mediasession

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/onair/internal/core"
)

// Engine is the operation set the bridge forwards to and observes.
type Engine interface {
	Play()
	Pause()
	Toggle()
	State() core.PlaybackState
	Subscribe(func(core.PlaybackState)) (unsubscribe func())
}

// Bridge keeps a Session in sync with an Engine. It never changes playback
// state itself.
type Bridge struct {
	session Session
	engine  Engine
	station string
	log     zerolog.Logger

	mu          sync.Mutex
	started     bool
	seeded      bool
	last        core.PlaybackState
	liveTitle   string
	unsubscribe func()
}

// NewBridge creates a bridge. station is shown while the live stream plays.
func NewBridge(s Session, e Engine, station string, log zerolog.Logger) *Bridge {
	return &Bridge{
		session: s,
		engine:  e,
		station: station,
		log:     log.With().Str("component", "mediasession").Logger(),
	}
}

// Start subscribes to the engine and publishes the current state. A state
// delivered through the subscription before the snapshot is applied wins
// over the snapshot.
func (b *Bridge) Start() {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	unsubscribe := b.engine.Subscribe(b.onState)
	s := b.engine.State()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.unsubscribe = unsubscribe
	if b.seeded {
		return
	}
	b.seeded = true
	b.last = s
	if s.Status == core.StatusPlaying {
		b.registerHandlers()
	}
	b.publishMetadata(s)
	b.setStatus(s.Status)
}

// SetLiveTitle shows the airing title as the artist line while on live.
func (b *Bridge) SetLiveTitle(title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if title == b.liveTitle {
		return
	}
	b.liveTitle = title
	if b.started && b.last.Source.IsLive() {
		b.publishMetadata(b.last)
	}
}

// Close detaches from the engine and releases the session.
func (b *Bridge) Close() error {
	b.mu.Lock()
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
	return b.session.Close()
}

func (b *Bridge) onState(s core.PlaybackState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev := b.last
	b.last = s
	b.seeded = true

	if s.Status == core.StatusPlaying && prev.Status != core.StatusPlaying {
		b.registerHandlers()
	}
	if !s.Source.Equal(prev.Source) || s.DurationSeconds != prev.DurationSeconds {
		if !s.Source.Equal(prev.Source) {
			b.liveTitle = ""
		}
		b.publishMetadata(s)
	}
	if statusFor(s.Status) != statusFor(prev.Status) {
		b.setStatus(s.Status)
	}
}

func (b *Bridge) registerHandlers() {
	b.session.SetHandlers(Handlers{
		Play:   b.engine.Play,
		Pause:  b.engine.Pause,
		Toggle: b.engine.Toggle,
	})
}

func (b *Bridge) publishMetadata(s core.PlaybackState) {
	md := MetadataFor(s, b.station)
	if md.Live && b.liveTitle != "" {
		md.Artist = b.liveTitle
	}
	if err := b.session.SetMetadata(md); err != nil {
		b.log.Debug().Err(err).Msg("metadata update failed")
	}
}

func (b *Bridge) setStatus(status core.Status) {
	if err := b.session.SetStatus(statusFor(status)); err != nil {
		b.log.Debug().Err(err).Msg("status update failed")
	}
}

// MetadataFor builds the OS metadata for a state.
func MetadataFor(s core.PlaybackState, station string) Metadata {
	md := Metadata{ID: s.Source.Fingerprint()}
	if s.Source.IsLive() {
		md.Live = true
		md.Title = station
		return md
	}
	md.Title = s.Source.DisplayTitle()
	md.Artist = s.Source.Artist
	md.ArtworkURL = s.Source.Artwork
	if s.HasDuration() {
		md.Length = time.Duration(s.DurationSeconds * float64(time.Second))
	}
	return md
}

func statusFor(s core.Status) Status {
	switch s {
	case core.StatusPlaying:
		return StatusPlaying
	case core.StatusPaused, core.StatusLoading:
		return StatusPaused
	default:
		return StatusStopped
	}
}
