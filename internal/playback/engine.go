package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/onair/internal/audio"
	"github.com/tessro/onair/internal/core"
	apperrors "github.com/tessro/onair/internal/errors"
	"github.com/tessro/onair/internal/resolver"
)

// DefaultRetryDelay is the wait before reloading after a failure.
const DefaultRetryDelay = 2 * time.Second

// Options configures an Engine.
type Options struct {
	// StreamURL is loaded for the live source.
	StreamURL  string
	Volume     int
	MaxRetries int
	RetryDelay time.Duration
	Scheduler  Scheduler
	Logger     zerolog.Logger
}

// Engine is the playback core. All methods are safe for concurrent use and
// never block on I/O.
//
// Subscribers and notice listeners run synchronously, in transition order,
// while the engine lock is held. They must not call back into the Engine.
type Engine struct {
	mu     sync.Mutex
	m      Machine
	last   core.PlaybackState
	out    audio.Output
	timer  Timer
	closed bool

	streamURL  string
	retryDelay time.Duration
	sched      Scheduler
	log        zerolog.Logger

	nextID  int
	subs    map[int]func(core.PlaybackState)
	notices map[int]func(Notice)
}

// New takes ownership of out and returns an idle engine on the live source.
func New(out audio.Output, opts Options) *Engine {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = WallClock{}
	}

	e := &Engine{
		m:          NewMachine(opts.Volume, opts.MaxRetries),
		out:        out,
		streamURL:  opts.StreamURL,
		retryDelay: opts.RetryDelay,
		sched:      opts.Scheduler,
		log:        opts.Logger.With().Str("component", "playback").Logger(),
		subs:       make(map[int]func(core.PlaybackState)),
		notices:    make(map[int]func(Notice)),
	}
	e.last = e.m.State()
	out.SetListener(e.onEvent)
	out.SetVolume(e.m.Volume)
	return e
}

// SwitchSource makes next the current source and starts loading it. An
// invalid track is rejected without any state change.
func (e *Engine) SwitchSource(next core.Source) error {
	if err := resolver.Validate(next); err != nil {
		e.mu.Lock()
		e.notify(Notice{Kind: NoticeValidation, Message: err.Error()})
		e.mu.Unlock()
		return err
	}
	e.dispatch(SwitchInput{Source: next})
	return nil
}

func (e *Engine) Play()   { e.dispatch(PlayInput{}) }
func (e *Engine) Pause()  { e.dispatch(PauseInput{}) }
func (e *Engine) Toggle() { e.dispatch(ToggleInput{}) }

// Seek moves to percent of the duration. It has no effect without a known
// duration or outside playing and paused.
func (e *Engine) Seek(percent float64) { e.dispatch(SeekInput{Percent: percent}) }

// SetVolume clamps percent to [0, 100] and applies it immediately.
func (e *Engine) SetVolume(percent int) { e.dispatch(VolumeInput{Percent: percent}) }

// State returns the current snapshot.
func (e *Engine) State() core.PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.m.State()
}

// StreamURL returns the URL loaded for the live source.
func (e *Engine) StreamURL() string {
	return e.streamURL
}

// Subscribe registers fn for every state change.
func (e *Engine) Subscribe(fn func(core.PlaybackState)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// Notices registers fn for user-facing messages.
func (e *Engine) Notices(fn func(Notice)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.notices[id] = fn
	return func() {
		e.mu.Lock()
		delete(e.notices, id)
		e.mu.Unlock()
	}
}

// Updates returns a channel that always holds the latest state. Intermediate
// states are dropped if the reader falls behind. The channel is closed when
// ctx is done.
func (e *Engine) Updates(ctx context.Context) <-chan core.PlaybackState {
	ch := make(chan core.PlaybackState, 1)
	ch <- e.State()

	unsubscribe := e.Subscribe(func(s core.PlaybackState) {
		for {
			select {
			case ch <- s:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
		close(ch)
	}()
	return ch
}

// Close cancels any pending retry and releases the output.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.stopTimer()
	e.out.Stop()
	e.mu.Unlock()
	return e.out.Close()
}

func (e *Engine) onEvent(ev audio.Event) {
	e.dispatch(OutputInput{Event: ev})
}

// dispatch runs in and every input produced while applying its effects.
func (e *Engine) dispatch(in Input) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	queue := []Input{in}
	for len(queue) > 0 {
		next, effects := Transition(e.m, queue[0])
		queue = queue[1:]
		e.m = next
		for _, eff := range effects {
			if follow := e.apply(eff); follow != nil {
				queue = append(queue, follow)
			}
		}
		e.publish()
	}
}

func (e *Engine) apply(eff Effect) Input {
	switch eff := eff.(type) {
	case LoadEffect:
		url := eff.Source.URL
		if eff.Source.IsLive() {
			url = e.streamURL
		}
		e.log.Debug().Uint64("gen", eff.Gen).Str("url", url).Msg("load")
		if err := e.out.Load(eff.Gen, url); err != nil {
			e.log.Warn().Err(err).Uint64("gen", eff.Gen).Msg("load rejected")
			return LoadFailedInput{Gen: eff.Gen, Err: err}
		}
		e.out.SetVolume(e.m.Volume)

	case PlayEffect:
		if err := e.out.Play(); err != nil {
			e.log.Warn().Err(err).Uint64("gen", eff.Gen).Msg("play rejected")
			return PlayRejectedInput{Gen: eff.Gen, Err: err}
		}

	case PauseEffect:
		e.out.Pause()

	case SeekEffect:
		e.out.Seek(eff.Seconds)

	case VolumeEffect:
		e.out.SetVolume(eff.Percent)

	case ScheduleRetryEffect:
		e.stopTimer()
		gen := eff.Gen
		e.log.Info().Int("attempt", eff.Attempt).Dur("delay", e.retryDelay).Msg("retry scheduled")
		e.timer = e.sched.AfterFunc(e.retryDelay, func() {
			e.dispatch(RetryInput{Gen: gen})
		})

	case CancelRetryEffect:
		e.stopTimer()

	case NoticeEffect:
		e.notify(eff.Notice)
	}
	return nil
}

func (e *Engine) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) notify(n Notice) {
	if n.Kind == NoticeTerminal {
		e.log.Error().Msg(n.Message)
	}
	for _, fn := range e.notices {
		fn(n)
	}
}

func (e *Engine) publish() {
	s := e.m.State()
	if s == e.last {
		return
	}
	if s.Source.Fingerprint() != e.last.Source.Fingerprint() {
		e.log.Info().Str("kind", string(s.Source.Kind)).Str("title", s.Source.DisplayTitle()).Msg("source changed")
	}
	if s.Status != e.last.Status {
		e.log.Debug().Str("from", string(e.last.Status)).Str("to", string(s.Status)).Msg("status")
	}
	e.last = s
	for _, fn := range e.subs {
		fn(s)
	}
}

// IsValidation reports whether err is a rejected source rather than a
// playback failure.
func IsValidation(err error) bool {
	return errors.Is(err, apperrors.ErrInvalidSource)
}

var _ core.Controller = (*Engine)(nil)
