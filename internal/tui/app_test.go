package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tessro/onair/internal/audio"
	"github.com/tessro/onair/internal/core"
	"github.com/tessro/onair/internal/playback"
	"github.com/tessro/onair/internal/resolver"
)

const testStream = "https://radio.test/live.mp3"

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestModel(t *testing.T) (Model, *audio.Fake, *testClock) {
	t.Helper()
	out := audio.NewFake()
	engine := playback.New(out, playback.Options{
		StreamURL: testStream,
		Volume:    50,
		Logger:    zerolog.Nop(),
	})
	t.Cleanup(func() { _ = engine.Close() })

	app := NewApp(Options{
		Engine:   engine,
		Resolver: resolver.New(func() string { return "1" }),
		Station:  "Test FM",
		Logger:   zerolog.Nop(),
	})
	clock := &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	app.now = clock.now

	m := NewModel(app)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), out, clock
}

func press(m Model, msg tea.KeyMsg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	up    = tea.KeyMsg{Type: tea.KeyUp}
)

var testEpisodes = []core.Episode{
	{Slug: "ep-2", URL: "https://cdn.test/ep2.mp3", Title: "Episode 2", FeedName: "Show"},
	{Slug: "ep-1", URL: "https://cdn.test/ep1.mp3", Title: "Episode 1", FeedName: "Show"},
}

func TestSpaceTogglesPlayback(t *testing.T) {
	m, out, _ := newTestModel(t)

	press(m, space)

	if got := m.app.engine.State().Status; got != core.StatusLoading {
		t.Errorf("status = %v, want %v", got, core.StatusLoading)
	}
	if l, ok := out.LastLoad(); !ok || l.URL != testStream {
		t.Errorf("last load = %+v, want %s", l, testStream)
	}
}

func TestVolumeKeys(t *testing.T) {
	m, out, _ := newTestModel(t)

	press(m, up)

	if got := m.app.engine.State().VolumePercent; got != 55 {
		t.Errorf("volume = %d, want 55", got)
	}
	if out.Volume != 55 {
		t.Errorf("output volume = %d, want 55", out.Volume)
	}
}

func TestURLInputSuppressesShortcuts(t *testing.T) {
	m, out, _ := newTestModel(t)

	m = press(m, runes("/"))
	if !m.urlInput.Focused() {
		t.Fatal("url input should be focused after /")
	}

	m = press(m, space)
	m = press(m, runes("l"))

	if len(out.Loads) != 0 {
		t.Errorf("loads = %d while editing, want 0", len(out.Loads))
	}
	if got := m.urlInput.Value(); got != " l" {
		t.Errorf("input value = %q, want %q", got, " l")
	}

	m = press(m, esc)
	if m.urlInput.Focused() {
		t.Error("esc should close the url input")
	}
}

func TestURLInputPlaysTrack(t *testing.T) {
	m, out, _ := newTestModel(t)

	m = press(m, runes("/"))
	m.urlInput.SetValue("  https://cdn.test/special.mp3 ")
	m = press(m, enter)

	if m.urlInput.Focused() {
		t.Error("input should close after a valid URL")
	}
	want := "https://cdn.test/special.mp3?cb=1"
	if got := m.app.engine.State().Source.URL; got != want {
		t.Errorf("source url = %q, want %q", got, want)
	}
	if l, _ := out.LastLoad(); l.URL != want {
		t.Errorf("loaded %q, want %q", l.URL, want)
	}
}

func TestURLInputRejectsInvalid(t *testing.T) {
	m, out, _ := newTestModel(t)

	m = press(m, runes("/"))
	m.urlInput.SetValue("ftp://nope")
	m = press(m, enter)

	if !m.urlInput.Focused() {
		t.Error("input should stay open after an invalid URL")
	}
	if m.notice == nil || m.notice.Kind != playback.NoticeValidation {
		t.Fatalf("notice = %+v, want validation notice", m.notice)
	}
	if len(out.Loads) != 0 {
		t.Errorf("loads = %d, want 0", len(out.Loads))
	}
	if !m.app.engine.State().Source.IsLive() {
		t.Error("source should be unchanged")
	}
}

func TestEnterOnEpisode(t *testing.T) {
	m, out, _ := newTestModel(t)
	next, _ := m.Update(episodesMsg{episodes: testEpisodes})
	m = next.(Model)

	m = press(m, runes("j"))
	m = press(m, enter)

	s := m.app.engine.State()
	if s.Source.Slug != "ep-1" {
		t.Fatalf("source slug = %q, want ep-1", s.Source.Slug)
	}
	out.Ready(600)
	out.Playing()
	if got := m.app.engine.State().Status; got != core.StatusPlaying {
		t.Fatalf("status = %v, want playing", got)
	}

	// Same episode again toggles instead of reloading
	loads := len(out.Loads)
	press(m, enter)
	if got := m.app.engine.State().Status; got != core.StatusPaused {
		t.Errorf("status = %v, want paused", got)
	}
	if len(out.Loads) != loads {
		t.Errorf("loads = %d, want %d", len(out.Loads), loads)
	}
}

func TestNextKeyUsesEpisodeList(t *testing.T) {
	m, _, _ := newTestModel(t)
	next, _ := m.Update(episodesMsg{episodes: testEpisodes})
	m = next.(Model)

	press(m, runes("n"))

	if got := m.app.engine.State().Source.Slug; got != "ep-2" {
		t.Errorf("source slug = %q, want ep-2", got)
	}
}

func TestNoticeLifetime(t *testing.T) {
	m, _, clock := newTestModel(t)

	next, _ := m.Update(noticeMsg(playback.Notice{Kind: playback.NoticeTransient, Message: "Reconnecting… attempt 1/3"}))
	m = next.(Model)
	if m.notice == nil {
		t.Fatal("notice should be shown")
	}

	clock.advance(4 * time.Second)
	next, _ = m.Update(tickMsg(clock.t))
	m = next.(Model)
	if m.notice == nil {
		t.Error("transient notice expired early")
	}

	clock.advance(time.Second)
	next, _ = m.Update(tickMsg(clock.t))
	m = next.(Model)
	if m.notice != nil {
		t.Errorf("notice = %+v, want expired after %v", m.notice, noticeLifetime)
	}
}

func TestTerminalNoticeClearsOnPlaying(t *testing.T) {
	m, _, clock := newTestModel(t)

	next, _ := m.Update(noticeMsg(playback.Notice{Kind: playback.NoticeTerminal, Message: "playback failed after 3 attempts"}))
	m = next.(Model)

	clock.advance(time.Minute)
	next, _ = m.Update(tickMsg(clock.t))
	m = next.(Model)
	if m.notice == nil {
		t.Fatal("terminal notice should persist")
	}

	next, _ = m.Update(stateMsg(core.PlaybackState{Source: core.LiveSource(), Status: core.StatusPlaying}))
	m = next.(Model)
	if m.notice != nil {
		t.Errorf("notice = %+v, want cleared once playing", m.notice)
	}
}

func TestHistoryRecordsPlayedSources(t *testing.T) {
	m, _, _ := newTestModel(t)
	track := core.TrackSource("https://cdn.test/ep1.mp3?cb=1", "Episode 1")
	track.Slug = "ep-1"

	states := []core.PlaybackState{
		{Source: core.LiveSource(), Status: core.StatusLoading},
		{Source: core.LiveSource(), Status: core.StatusPlaying},
		{Source: core.LiveSource(), Status: core.StatusPlaying, VolumePercent: 40},
		{Source: track, Status: core.StatusLoading},
		{Source: track, Status: core.StatusPlaying},
	}
	for _, s := range states {
		next, _ := m.Update(stateMsg(s))
		m = next.(Model)
	}

	entries := m.historyView.Entries()
	if len(entries) != 2 {
		t.Fatalf("history = %d entries, want 2", len(entries))
	}
	if entries[0].Source.Slug != "ep-1" || !entries[1].Source.IsLive() {
		t.Errorf("history = %+v, want [ep-1, live]", entries)
	}
}

func TestLiveTitleOnlyWhileLive(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, _ := m.Update(titleMsg("Artist - Song"))
	m = next.(Model)
	if m.liveTitle != "Artist - Song" {
		t.Errorf("liveTitle = %q, want %q", m.liveTitle, "Artist - Song")
	}
	if !strings.Contains(m.View(), "Artist - Song") {
		t.Error("view should show the live title")
	}

	next, _ = m.Update(stateMsg(core.PlaybackState{Source: core.TrackSource("https://cdn.test/a.mp3", "A"), Status: core.StatusLoading}))
	m = next.(Model)
	if m.liveTitle != "" {
		t.Errorf("liveTitle = %q, want cleared off live", m.liveTitle)
	}
}

func TestCopySource(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { writeClipboard = orig })

	m, _, _ := newTestModel(t)
	_, cmd := m.Update(runes("c"))
	if cmd == nil {
		t.Fatal("c should return a command")
	}
	msg := cmd()

	if copied != testStream {
		t.Errorf("copied %q, want %q", copied, testStream)
	}
	if got, ok := msg.(copiedMsg); !ok || string(got) != testStream {
		t.Errorf("msg = %#v, want copiedMsg(%q)", msg, testStream)
	}
}

func TestCopySourceError(t *testing.T) {
	orig := writeClipboard
	writeClipboard = func(string) error { return errors.New("no clipboard") }
	t.Cleanup(func() { writeClipboard = orig })

	m, _, _ := newTestModel(t)
	_, cmd := m.Update(runes("c"))
	next, _ := m.Update(cmd())
	m = next.(Model)

	if m.notice == nil || !strings.Contains(m.notice.Message, "no clipboard") {
		t.Errorf("notice = %+v, want clipboard error", m.notice)
	}
}

func TestViewShowsTrackProgress(t *testing.T) {
	m, _, _ := newTestModel(t)
	src := core.TrackSource("https://cdn.test/ep1.mp3", "Episode 1")
	src.Artist = "Show"

	next, _ := m.Update(stateMsg(core.PlaybackState{
		Source:          src,
		Status:          core.StatusPlaying,
		ProgressPercent: 50,
		DurationSeconds: 120,
		VolumePercent:   70,
	}))
	view := next.(Model).View()

	for _, want := range []string{"Episode 1", "1:00", "2:00", "70%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	next, cmd := m.Update(runes("q"))
	if !next.(Model).quitting {
		t.Error("q should set quitting")
	}
	if cmd == nil {
		t.Error("q should return tea.Quit")
	}
}
