package nowplaying

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/onair/internal/core"
)

// DefaultInterval is the refresh period of the live title.
const DefaultInterval = 30 * time.Second

// Poller fetches the live title on activation and then every interval until
// deactivated.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	onTitle  func(Title)
	log      zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	last   Title
	gen    int
}

// NewPoller creates an inactive poller. onTitle is called from the polling
// goroutine whenever the title changes.
func NewPoller(f Fetcher, interval time.Duration, onTitle func(Title), log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetcher:  f,
		interval: interval,
		onTitle:  onTitle,
		log:      log.With().Str("component", "nowplaying").Logger(),
	}
}

// Start activates the poller. It is a no-op while already active.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.gen++
	gen := p.gen

	p.wg.Add(1)
	go p.run(ctx, gen)
}

// Stop deactivates the poller and waits for an in-flight fetch to finish.
func (p *Poller) Stop() {
	p.deactivate()
	p.wg.Wait()
}

// deactivate cancels the polling goroutine without waiting for it.
func (p *Poller) deactivate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.last = Title{}
}

// Active reports whether the poller is running.
func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Current returns the last title seen while active.
func (p *Poller) Current() Title {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *Poller) run(ctx context.Context, gen int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx, gen)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, gen)
		}
	}
}

// poll fetches once. A tick and a cancellation can be ready together, so a
// cancelled context is checked before fetching.
func (p *Poller) poll(ctx context.Context, gen int) {
	if ctx.Err() != nil {
		return
	}
	t, err := p.fetcher.Fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Debug().Err(err).Msg("now-playing fetch failed")
		}
		return
	}

	p.mu.Lock()
	if ctx.Err() != nil || gen != p.gen || t == p.last {
		p.mu.Unlock()
		return
	}
	p.last = t
	p.mu.Unlock()

	p.log.Debug().Str("title", t.String()).Msg("now playing")
	if p.onTitle != nil {
		p.onTitle(t)
	}
}

// StateSource is the engine surface the poller follows.
type StateSource interface {
	State() core.PlaybackState
	Subscribe(func(core.PlaybackState)) (unsubscribe func())
}

// Follow keeps the poller active exactly while the engine's source is live.
// The returned function detaches and stops the poller.
func (p *Poller) Follow(ctx context.Context, src StateSource) (stop func()) {
	update := func(s core.PlaybackState) {
		if s.Source.IsLive() {
			p.Start(ctx)
		} else {
			// Subscribers run under the engine lock, so never wait here.
			p.deactivate()
		}
	}
	unsubscribe := src.Subscribe(update)
	update(src.State())

	return func() {
		unsubscribe()
		p.Stop()
	}
}
