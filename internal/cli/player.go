package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/onair/internal/audio"
	"github.com/tessro/onair/internal/audio/vlc"
	"github.com/tessro/onair/internal/catalog"
	"github.com/tessro/onair/internal/config"
	apperrors "github.com/tessro/onair/internal/errors"
	"github.com/tessro/onair/internal/httpclient"
	"github.com/tessro/onair/internal/logging"
	"github.com/tessro/onair/internal/mediasession"
	"github.com/tessro/onair/internal/mediasession/mpris"
	"github.com/tessro/onair/internal/nowplaying"
	"github.com/tessro/onair/internal/playback"
	"github.com/tessro/onair/internal/resolver"
)

// mprisName is the bus name suffix: org.mpris.MediaPlayer2.onair.
const mprisName = "onair"

// player bundles the engine with everything that hangs off it for the life
// of one command.
type player struct {
	engine   *playback.Engine
	catalog  *catalog.Catalog
	resolver *resolver.Resolver
	bridge   *mediasession.Bridge
	log      zerolog.Logger

	logCloser  io.Closer
	stopPoller func()

	// onTitle fans the live title out beyond the media session.
	onTitle []func(nowplaying.Title)
}

type playerOptions struct {
	// Quiet keeps logs off the terminal unless a log file is configured.
	Quiet bool
}

// newPlayer builds the output, engine, media session and live title poller
// from cfg. The poller follows the engine once start is called.
func newPlayer(cfg *config.Config, opts playerOptions) (*player, error) {
	log, logCloser, err := newLogger(cfg, opts.Quiet)
	if err != nil {
		return nil, err
	}

	out, err := newOutput(cfg.Audio, log)
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	engine := playback.New(out, playback.Options{
		StreamURL:  cfg.Station.StreamURL,
		Volume:     cfg.Playback.Volume,
		MaxRetries: cfg.Playback.MaxRetries,
		RetryDelay: time.Duration(cfg.Playback.RetryDelayMs) * time.Millisecond,
		Logger:     log,
	})

	p := &player{
		engine:    engine,
		catalog:   newCatalog(cfg, log),
		resolver:  resolver.New(nil),
		log:       log,
		logCloser: logCloser,
	}

	var session mediasession.Session = mediasession.NoopSession{}
	if cfg.MediaSession.Enabled {
		s, err := mpris.New(mprisName, cfg.MediaSession.Identity, log)
		if err != nil {
			log.Warn().Err(err).Msg("media session unavailable, media keys disabled")
		} else {
			session = s
		}
	}
	p.bridge = mediasession.NewBridge(session, engine, cfg.Station.Name, log)

	return p, nil
}

// start attaches the media session and the live title poller.
func (p *player) start(ctx context.Context, cfg *config.Config) {
	p.bridge.Start()

	poller := nowplaying.NewPoller(
		newTitleFetcher(cfg, p.log),
		time.Duration(cfg.Station.PollInterval)*time.Second,
		p.titleChanged,
		p.log,
	)
	p.stopPoller = poller.Follow(ctx, p.engine)
}

func (p *player) titleChanged(t nowplaying.Title) {
	p.bridge.SetLiveTitle(t.String())
	for _, fn := range p.onTitle {
		fn(t)
	}
}

// Close stops the poller, detaches the media session and releases the output.
func (p *player) Close() error {
	if p.stopPoller != nil {
		p.stopPoller()
	}
	if err := p.bridge.Close(); err != nil {
		p.log.Debug().Err(err).Msg("media session close")
	}
	err := p.engine.Close()
	_ = p.logCloser.Close()
	return err
}

func newLogger(cfg *config.Config, quiet bool) (zerolog.Logger, io.Closer, error) {
	log, closer, err := logging.Setup(cfg.Log, logging.Options{Quiet: quiet, Verbose: Verbose()})
	if err != nil {
		return log, nil, apperrors.WithSuggestion(err, "Set log.level to debug, info, warn or error")
	}
	return log, closer, nil
}

func newOutput(cfg config.AudioConfig, log zerolog.Logger) (audio.Output, error) {
	switch cfg.Backend {
	case "null":
		return audio.NewNull(), nil
	case "vlc", "":
		out, err := vlc.New(vlc.Options{
			NetworkCachingMs: cfg.NetworkCaching,
			UserAgent:        cfg.UserAgent,
			Verbose:          Verbose(),
		}, log)
		if err != nil {
			return nil, apperrors.WithSuggestion(err,
				"Install VLC (libvlc) or set audio.backend = \"null\" in ~/.onairrc")
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown audio backend %q", apperrors.ErrInvalidConfig, cfg.Backend)
	}
}

func newHTTPClient(cfg *config.Config, log zerolog.Logger) *httpclient.Client {
	return httpclient.New(
		httpclient.WithTimeout(time.Duration(cfg.Podcasts.Timeout)*time.Second),
		httpclient.WithUserAgent(cfg.Audio.UserAgent),
		httpclient.WithLogger(log),
	)
}

func newCatalog(cfg *config.Config, log zerolog.Logger) *catalog.Catalog {
	if len(cfg.Podcasts.Feeds) == 0 {
		return nil
	}
	return catalog.New(newHTTPClient(cfg, log), cfg.Podcasts.Feeds, log)
}

// newTitleFetcher prefers the station endpoint and falls back to ICY
// metadata from the stream when enabled.
func newTitleFetcher(cfg *config.Config, log zerolog.Logger) nowplaying.Fetcher {
	client := newHTTPClient(cfg, log)

	var chain nowplaying.Chain
	if cfg.Station.NowPlayingURL != "" {
		chain = append(chain, &nowplaying.JSONFetcher{Client: client, URL: cfg.Station.NowPlayingURL})
	}
	if cfg.Station.UseICY {
		chain = append(chain, &nowplaying.ICYFetcher{
			HTTP:      client.HTTP(),
			URL:       cfg.Station.StreamURL,
			UserAgent: client.UserAgent(),
		})
	}
	return chain
}
