package playback

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/onair/internal/audio"
	"github.com/tessro/onair/internal/core"
)

type manualTimer struct {
	f       func()
	d       time.Duration
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// manualScheduler records timers and runs them only when told to.
type manualScheduler struct {
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &manualTimer{f: f, d: d}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fire runs every armed timer and reports how many ran.
func (s *manualScheduler) fire() int {
	n := 0
	for _, t := range s.timers {
		if t.stopped || t.fired {
			continue
		}
		t.fired = true
		t.f()
		n++
	}
	return n
}

type harness struct {
	engine   *Engine
	out      *audio.Fake
	sched    *manualScheduler
	statuses []core.Status
	notices  []Notice
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		out:   audio.NewFake(),
		sched: &manualScheduler{},
	}
	h.engine = New(h.out, Options{
		StreamURL: "https://stream.example.org/live.mp3",
		Volume:    80,
		Scheduler: h.sched,
		Logger:    zerolog.Nop(),
	})
	h.statuses = []core.Status{h.engine.State().Status}
	h.engine.Subscribe(func(s core.PlaybackState) {
		if s.Status != h.statuses[len(h.statuses)-1] {
			h.statuses = append(h.statuses, s.Status)
		}
	})
	h.engine.Notices(func(n Notice) { h.notices = append(h.notices, n) })
	t.Cleanup(func() { _ = h.engine.Close() })
	return h
}

func (h *harness) noticesOf(kind NoticeKind) []Notice {
	var out []Notice
	for _, n := range h.notices {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// playTrack switches to src and lets the output report it playing.
func (h *harness) playTrack(t *testing.T, src core.Source, duration float64) {
	t.Helper()
	if err := h.engine.SwitchSource(src); err != nil {
		t.Fatalf("SwitchSource() error = %v", err)
	}
	h.out.Ready(duration)
	h.out.Playing()
	if got := h.engine.State().Status; got != core.StatusPlaying {
		t.Fatalf("Status = %v, want playing", got)
	}
}

var (
	ep1 = core.TrackSource("https://x/ep1.mp3", "Ep1")
	ep2 = core.TrackSource("https://x/ep2.mp3", "Ep2")
)

func equalStatuses(a, b []core.Status) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
