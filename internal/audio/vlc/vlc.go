// Package vlc implements audio.Output on top of libVLC.
package vlc

import (
	"fmt"
	"strings"
	"sync"

	vlc "github.com/adrg/libvlc-go/v3"
	"github.com/rs/zerolog"

	"github.com/tessro/onair/internal/audio"
	apperrors "github.com/tessro/onair/internal/errors"
)

// Options configures the libVLC instance.
type Options struct {
	NetworkCachingMs int
	UserAgent        string
	Verbose          bool
}

// Output drives a single libVLC media player. libVLC is only ever called from
// Output methods, under vlcMu; native callbacks just post to the dispatcher.
type Output struct {
	opts Options
	log  zerolog.Logger

	vlcMu  sync.Mutex
	player *vlc.Player
	media  *vlc.Media
	events []vlc.EventID

	gen  audio.Generation
	disp *audio.Dispatcher
}

// New initializes libVLC and creates a player.
func New(opts Options, log zerolog.Logger) (*Output, error) {
	if opts.NetworkCachingMs <= 0 {
		opts.NetworkCachingMs = 1500
	}
	args := []string{
		"--no-video",
		"--no-color",
		fmt.Sprintf("--network-caching=%d", opts.NetworkCachingMs),
		fmt.Sprintf("--live-caching=%d", opts.NetworkCachingMs),
	}
	if !opts.Verbose {
		args = append(args, "--quiet")
	}

	if err := vlc.Init(args...); err != nil {
		return nil, fmt.Errorf("%w: libvlc init failed: %v", apperrors.ErrOutputUnavailable, err)
	}
	player, err := vlc.NewPlayer()
	if err != nil {
		vlc.Release()
		return nil, fmt.Errorf("%w: new vlc player failed: %v", apperrors.ErrOutputUnavailable, err)
	}

	o := &Output{
		opts:   opts,
		log:    log.With().Str("component", "vlc").Logger(),
		player: player,
		disp:   audio.NewDispatcher(256),
	}
	if err := o.attach(); err != nil {
		player.Release()
		vlc.Release()
		o.disp.Close()
		return nil, fmt.Errorf("%w: %v", apperrors.ErrOutputUnavailable, err)
	}

	o.log.Debug().Str("version", vlc.Version().String()).Msg("libvlc ready")
	return o, nil
}

func (o *Output) attach() error {
	manager, err := o.player.EventManager()
	if err != nil {
		return fmt.Errorf("event manager: %w", err)
	}

	kinds := []vlc.Event{
		vlc.MediaPlayerPlaying,
		vlc.MediaPlayerPaused,
		vlc.MediaPlayerEndReached,
		vlc.MediaPlayerEncounteredError,
		vlc.MediaPlayerTimeChanged,
		vlc.MediaPlayerLengthChanged,
	}
	for _, kind := range kinds {
		id, err := manager.Attach(kind, o.onEvent, nil)
		if err != nil {
			manager.Detach(o.events...)
			o.events = nil
			return fmt.Errorf("attach event %d: %w", kind, err)
		}
		o.events = append(o.events, id)
	}
	return nil
}

// onEvent runs on a libVLC thread. It must not call back into libVLC.
func (o *Output) onEvent(event vlc.Event, _ interface{}) {
	gen := o.gen.Current()

	var ev audio.Event
	switch event {
	case vlc.MediaPlayerPlaying:
		ev = audio.Event{Kind: audio.EventPlaying, Gen: gen}
	case vlc.MediaPlayerPaused:
		ev = audio.Event{Kind: audio.EventPaused, Gen: gen}
	case vlc.MediaPlayerEndReached:
		ev = audio.Event{Kind: audio.EventEnded, Gen: gen}
	case vlc.MediaPlayerEncounteredError:
		ev = audio.Event{Kind: audio.EventError, Gen: gen, Err: apperrors.ErrPlaybackFailed}
	case vlc.MediaPlayerTimeChanged, vlc.MediaPlayerLengthChanged:
		// Position and length are read on the dispatcher goroutine.
		ev = audio.Event{Kind: audio.EventProgress, Gen: gen, Position: -1}
	default:
		return
	}
	if !o.disp.Post(ev) && ev.Kind != audio.EventProgress {
		o.log.Warn().Stringer("event", ev.Kind).Msg("event queue full, dropped event")
	}
}

// SetListener installs the receiver. Progress events are completed with the
// current position and length before delivery.
func (o *Output) SetListener(fn audio.Listener) {
	o.disp.SetListener(func(ev audio.Event) {
		if ev.Kind == audio.EventProgress {
			ev.Position, ev.Duration = o.position()
		}
		fn(ev)
	})
}

func (o *Output) position() (pos, dur float64) {
	o.vlcMu.Lock()
	defer o.vlcMu.Unlock()
	if o.player == nil {
		return 0, 0
	}
	if ms, err := o.player.MediaTime(); err == nil && ms > 0 {
		pos = float64(ms) / 1000
	}
	if ms, err := o.player.MediaLength(); err == nil && ms > 0 {
		dur = float64(ms) / 1000
	}
	return pos, dur
}

// Load replaces the media. Ready is reported as soon as the media is
// attached; the length follows in progress events once libVLC knows it.
//
// The event tag moves to gen only after Stop has joined the old input thread
// and the new media is set, so teardown events of the old media stay stale.
func (o *Output) Load(gen uint64, url string) error {
	u := strings.Trim(url, " \r\n\t")

	o.vlcMu.Lock()
	defer o.vlcMu.Unlock()
	if o.player == nil {
		return apperrors.ErrOutputUnavailable
	}

	if err := o.gen.Replace(gen, func() error { return o.replaceMedia(u) }); err != nil {
		return err
	}
	o.disp.Post(audio.Event{Kind: audio.EventReady, Gen: gen})
	return nil
}

// replaceMedia stops the player and swaps in a media for u. Callers hold vlcMu.
func (o *Output) replaceMedia(u string) error {
	_ = o.player.Stop()
	if o.media != nil {
		_ = o.media.Release()
		o.media = nil
	}

	m, err := vlc.NewMediaFromURL(u)
	if err != nil {
		return fmt.Errorf("%w: new media from url: %v", apperrors.ErrPlaybackFailed, err)
	}
	opts := []string{
		":metadata-network-access=1",
		fmt.Sprintf(":network-caching=%d", o.opts.NetworkCachingMs),
		":http-reconnect",
	}
	if o.opts.UserAgent != "" {
		opts = append(opts, ":http-user-agent="+o.opts.UserAgent)
	}
	_ = m.AddOptions(opts...)

	if err := o.player.SetMedia(m); err != nil {
		_ = m.Release()
		return fmt.Errorf("%w: set media: %v", apperrors.ErrPlaybackFailed, err)
	}
	o.media = m
	return nil
}

func (o *Output) Play() error {
	o.vlcMu.Lock()
	defer o.vlcMu.Unlock()
	if o.player == nil || o.media == nil {
		return audio.ErrNothingLoaded
	}
	if o.player.IsPlaying() {
		return nil
	}
	if err := o.player.Play(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrPlaybackFailed, err)
	}
	return nil
}

func (o *Output) Pause() {
	o.vlcMu.Lock()
	defer o.vlcMu.Unlock()
	if o.player != nil {
		_ = o.player.SetPause(true)
	}
}

func (o *Output) Seek(seconds float64) {
	o.vlcMu.Lock()
	defer o.vlcMu.Unlock()
	if o.player == nil || !o.player.IsSeekable() {
		return
	}
	if err := o.player.SetMediaTime(int(seconds * 1000)); err != nil {
		o.log.Debug().Err(err).Float64("seconds", seconds).Msg("seek failed")
	}
}

func (o *Output) SetVolume(percent int) {
	o.vlcMu.Lock()
	defer o.vlcMu.Unlock()
	if o.player != nil {
		_ = o.player.SetVolume(audio.Clamp(percent, 0, 100))
	}
}

func (o *Output) Stop() {
	o.vlcMu.Lock()
	defer o.vlcMu.Unlock()
	if o.player != nil {
		_ = o.player.Stop()
	}
}

// Close releases the player and libVLC.
func (o *Output) Close() error {
	o.disp.Close()
	if n := o.disp.Dropped(); n > 0 {
		o.log.Warn().Int("dropped", n).Msg("output events lost to a full queue")
	}

	o.vlcMu.Lock()
	defer o.vlcMu.Unlock()
	if o.player == nil {
		return nil
	}
	if manager, err := o.player.EventManager(); err == nil {
		manager.Detach(o.events...)
	}
	_ = o.player.Stop()
	if o.media != nil {
		_ = o.media.Release()
		o.media = nil
	}
	_ = o.player.Release()
	o.player = nil
	return vlc.Release()
}

var _ audio.Output = (*Output)(nil)
