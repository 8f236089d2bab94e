package mediasession

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tessro/onair/internal/audio"
	"github.com/tessro/onair/internal/core"
	"github.com/tessro/onair/internal/playback"
)

// recordingSession keeps every call for inspection.
type recordingSession struct {
	mu       sync.Mutex
	handlers []Handlers
	metadata []Metadata
	statuses []Status
	closed   bool
}

func (r *recordingSession) SetHandlers(h Handlers) {
	r.mu.Lock()
	r.handlers = append(r.handlers, h)
	r.mu.Unlock()
}

func (r *recordingSession) SetMetadata(md Metadata) error {
	r.mu.Lock()
	r.metadata = append(r.metadata, md)
	r.mu.Unlock()
	return nil
}

func (r *recordingSession) SetStatus(s Status) error {
	r.mu.Lock()
	r.statuses = append(r.statuses, s)
	r.mu.Unlock()
	return nil
}

func (r *recordingSession) Close() error {
	r.closed = true
	return nil
}

func (r *recordingSession) lastMetadata() Metadata {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metadata[len(r.metadata)-1]
}

func (r *recordingSession) lastStatus() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[len(r.statuses)-1]
}

func newBridge(t *testing.T) (*Bridge, *recordingSession, *playback.Engine, *audio.Fake) {
	t.Helper()
	out := audio.NewFake()
	eng := playback.New(out, playback.Options{
		StreamURL: "https://stream.example.org/live.mp3",
		Volume:    80,
		Logger:    zerolog.Nop(),
	})
	rec := &recordingSession{}
	b := NewBridge(rec, eng, "On Air", zerolog.Nop())
	b.Start()
	t.Cleanup(func() {
		_ = b.Close()
		_ = eng.Close()
	})
	return b, rec, eng, out
}

var episode = core.Source{
	Kind:    core.KindTrack,
	URL:     "https://x/ep1.mp3",
	Title:   "Ep1",
	Artist:  "Matinale",
	Artwork: "https://x/ep1.jpg",
}

func TestBridgeInitialLiveMetadata(t *testing.T) {
	_, rec, _, _ := newBridge(t)

	md := rec.lastMetadata()
	if !md.Live || md.Title != "On Air" {
		t.Errorf("metadata = %+v, want live station", md)
	}
	if rec.lastStatus() != StatusStopped {
		t.Errorf("status = %v, want Stopped", rec.lastStatus())
	}
}

func TestBridgePublishesTrackMetadata(t *testing.T) {
	_, rec, eng, out := newBridge(t)

	_ = eng.SwitchSource(episode)
	out.Ready(300)

	md := rec.lastMetadata()
	if md.Title != "Ep1" || md.Artist != "Matinale" || md.ArtworkURL != episode.Artwork {
		t.Errorf("metadata = %+v, want episode metadata", md)
	}
	if md.Length.Seconds() != 300 {
		t.Errorf("Length = %v, want 5m", md.Length)
	}
	if md.ID != episode.Fingerprint() {
		t.Error("metadata ID should follow the source fingerprint")
	}
	if rec.lastStatus() != StatusPlaying {
		t.Errorf("status = %v, want Playing", rec.lastStatus())
	}

	_ = eng.SwitchSource(core.LiveSource())
	if md := rec.lastMetadata(); !md.Live || md.Title != "On Air" {
		t.Errorf("metadata after live switch = %+v", md)
	}
}

func TestBridgeReregistersHandlersOnPlaying(t *testing.T) {
	_, rec, eng, out := newBridge(t)

	_ = eng.SwitchSource(episode)
	out.Ready(300)
	eng.Pause()
	eng.Play()

	if len(rec.handlers) != 2 {
		t.Fatalf("SetHandlers calls = %d, want 2", len(rec.handlers))
	}

	h := rec.handlers[1]
	h.Pause()
	if got := eng.State().Status; got != core.StatusPaused {
		t.Errorf("Status after OS pause = %v, want paused", got)
	}
	h.Toggle()
	if got := eng.State().Status; got != core.StatusPlaying {
		t.Errorf("Status after OS toggle = %v, want playing", got)
	}
}

func TestBridgeLiveTitle(t *testing.T) {
	b, rec, eng, out := newBridge(t)
	eng.Play()
	out.Ready(0)

	b.SetLiveTitle("M83 - Midnight City")
	if md := rec.lastMetadata(); md.Artist != "M83 - Midnight City" || md.Title != "On Air" {
		t.Errorf("metadata = %+v, want live title as artist", md)
	}

	count := len(rec.metadata)
	b.SetLiveTitle("M83 - Midnight City")
	if len(rec.metadata) != count {
		t.Error("repeated live title republished metadata")
	}
}

func TestBridgeClose(t *testing.T) {
	b, rec, eng, _ := newBridge(t)
	_ = b.Close()
	if !rec.closed {
		t.Error("session not closed")
	}

	count := len(rec.metadata)
	_ = eng.SwitchSource(episode)
	if len(rec.metadata) != count {
		t.Error("bridge still receives state after Close")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		in   core.Status
		want Status
	}{
		{core.StatusIdle, StatusStopped},
		{core.StatusLoading, StatusPaused},
		{core.StatusPlaying, StatusPlaying},
		{core.StatusPaused, StatusPaused},
		{core.StatusError, StatusStopped},
	}
	for _, tt := range tests {
		if got := statusFor(tt.in); got != tt.want {
			t.Errorf("statusFor(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// racingEngine delivers a transition while Start is subscribing and then
// hands out a snapshot older than that transition.
type racingEngine struct {
	snapshot core.PlaybackState
	pushed   core.PlaybackState
}

func (e *racingEngine) Play()   {}
func (e *racingEngine) Pause()  {}
func (e *racingEngine) Toggle() {}

func (e *racingEngine) State() core.PlaybackState { return e.snapshot }

func (e *racingEngine) Subscribe(fn func(core.PlaybackState)) func() {
	fn(e.pushed)
	return func() {}
}

func TestBridgeStartKeepsDeliveredState(t *testing.T) {
	eng := &racingEngine{
		snapshot: core.PlaybackState{Source: core.LiveSource(), Status: core.StatusIdle},
		pushed:   core.PlaybackState{Source: episode, Status: core.StatusPlaying},
	}
	rec := &recordingSession{}
	b := NewBridge(rec, eng, "On Air", zerolog.Nop())
	b.Start()

	if md := rec.lastMetadata(); md.Title != "Ep1" {
		t.Errorf("metadata title = %q, want Ep1", md.Title)
	}
	if rec.lastStatus() != StatusPlaying {
		t.Errorf("status = %v, want Playing", rec.lastStatus())
	}
	if len(rec.handlers) != 1 {
		t.Errorf("SetHandlers calls = %d, want 1", len(rec.handlers))
	}
}

func TestBridgeStartRegistersHandlersWhenPlaying(t *testing.T) {
	playing := core.PlaybackState{Source: episode, Status: core.StatusPlaying}
	eng := &snapshotOnly{&racingEngine{snapshot: playing}}
	rec := &recordingSession{}
	b := NewBridge(rec, eng, "On Air", zerolog.Nop())
	b.Start()

	if len(rec.handlers) != 1 {
		t.Errorf("SetHandlers calls = %d, want 1", len(rec.handlers))
	}
	if rec.lastStatus() != StatusPlaying {
		t.Errorf("status = %v, want Playing", rec.lastStatus())
	}
}

// snapshotOnly never delivers through the subscription.
type snapshotOnly struct{ *racingEngine }

func (e *snapshotOnly) Subscribe(func(core.PlaybackState)) func() { return func() {} }
