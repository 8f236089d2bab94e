package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/onair/internal/catalog"
	"github.com/tessro/onair/internal/core"
	apperrors "github.com/tessro/onair/internal/errors"
	"github.com/tessro/onair/internal/nowplaying"
	"github.com/tessro/onair/internal/playback"
	"github.com/tessro/onair/internal/resolver"
	"github.com/tessro/onair/internal/tail"
	"github.com/tessro/onair/internal/wizard"
)

var (
	playPick      bool
	playVolume    int
	playNoEmoji   bool
	playTimestamp bool
	playFormat    string
)

var playCmd = &cobra.Command{
	Use:   "play [live|<url>|<slug>]",
	Short: "Play the live stream or an episode headlessly",
	Long: `Play a source and print playback transitions until Ctrl+C.
Without arguments, plays the live stream.

Events printed:
  - Source changes
  - Loading, reconnect attempts and errors
  - Play/Pause and finished episodes
  - Volume changes
  - Live titles while on the stream

Examples:
  onair play                           # Live stream
  onair play live                      # Same thing
  onair play ma-derniere-emission      # Episode by slug (see 'onair episodes')
  onair play https://example.org/a.mp3 # Any episode URL
  onair play --pick                    # Choose interactively`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playPick, "pick", false, "Choose the source from a list")
	playCmd.Flags().IntVar(&playVolume, "volume", -1, "Start volume (0-100)")
	playCmd.Flags().BoolVar(&playNoEmoji, "no-emoji", false, "disable emoji output")
	playCmd.Flags().BoolVarP(&playTimestamp, "timestamp", "t", false, "show timestamps")
	playCmd.Flags().StringVarP(&playFormat, "format", "f", "", "custom format template")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	if playFormat != "" {
		if err := tail.ParseTemplate(playFormat); err != nil {
			return fmt.Errorf("invalid --format: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newPlayer(cfg, playerOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	arg := wizard.LiveChoice
	if len(args) > 0 {
		arg = args[0]
	} else if playPick {
		eps, err := loadEpisodes(ctx, p.catalog)
		if err != nil {
			return err
		}
		if arg, err = wizard.NewInteractive(cfg.Station.Name).PickSource(eps); err != nil {
			return err
		}
	}

	req, err := resolveTarget(ctx, arg, func(ctx context.Context) ([]core.Episode, error) {
		return loadEpisodes(ctx, p.catalog)
	})
	if err != nil {
		return err
	}
	src, err := p.resolver.Resolve(req)
	if err != nil {
		return err
	}

	watcher := tail.NewWatcher(p.engine.Updates(ctx))
	unsubscribe := p.engine.Notices(watcher.Notice)
	defer unsubscribe()
	p.onTitle = append(p.onTitle, func(t nowplaying.Title) { watcher.LiveTitle(t.String()) })

	formatter := tail.NewFormatter(
		tail.WithEmoji(!playNoEmoji),
		tail.WithTimestamp(playTimestamp),
		tail.WithTemplate(playFormat),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	p.start(ctx, cfg)
	if playVolume >= 0 {
		p.engine.SetVolume(playVolume)
	}
	if err := p.engine.SwitchSource(src); err != nil {
		return switchError(err)
	}

	for {
		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			printEvent(formatter, event)

		case err := <-errCh:
			if err == context.Canceled {
				return nil
			}
			return err
		}
	}
}

// resolveTarget maps a play argument to a request. Episodes are only loaded
// for slugs.
func resolveTarget(ctx context.Context, arg string, episodes func(context.Context) ([]core.Episode, error)) (resolver.Request, error) {
	arg = strings.TrimSpace(arg)
	switch {
	case arg == "" || strings.EqualFold(arg, wizard.LiveChoice):
		return resolver.Live(), nil
	case strings.Contains(arg, "://"):
		return resolver.ForURL(arg), nil
	}

	eps, err := episodes(ctx)
	if err != nil {
		return resolver.Request{}, err
	}
	ep, ok := resolver.FindBySlug(eps, arg)
	if !ok {
		return resolver.Request{}, fmt.Errorf("%w: %q", apperrors.ErrEpisodeNotFound, arg)
	}
	return resolver.ForEpisode(ep), nil
}

// switchError adds a hint when the engine rejected the source itself.
func switchError(err error) error {
	if playback.IsValidation(err) {
		return apperrors.WithSuggestion(err,
			"Pass live, an http(s) episode URL, or a slug from 'onair episodes'")
	}
	return err
}

// loadEpisodes fetches every feed. Partial failures are logged by the
// catalog; only a total failure is an error.
func loadEpisodes(ctx context.Context, cat *catalog.Catalog) ([]core.Episode, error) {
	if cat == nil {
		return nil, apperrors.WithSuggestion(
			fmt.Errorf("%w: no podcast feeds configured", apperrors.ErrFeedUnavailable),
			"Add feeds to podcasts.feeds in ~/.onairrc")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res := cat.LoadAll(ctx)
	if len(res.Data) == 0 && res.HasErrors() {
		return nil, res.Errors[0]
	}
	return res.Data, nil
}

type eventJSON struct {
	Type    string              `json:"type"`
	Time    time.Time           `json:"time"`
	State   *core.PlaybackState `json:"state,omitempty"`
	Message string              `json:"message,omitempty"`
}

func printEvent(f *tail.Formatter, e tail.Event) {
	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(eventJSON{
			Type:    tail.EventTypeName(e.Type),
			Time:    e.Timestamp,
			State:   e.Current,
			Message: e.Message,
		})
		return
	}
	fmt.Println(f.Format(e))
}
