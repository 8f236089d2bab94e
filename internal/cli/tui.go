package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/onair/internal/nowplaying"
	"github.com/tessro/onair/internal/tui"
)

var tuiRefresh int

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive player",
	Long: `Launch the interactive terminal player.

The player shows:
  • Episodes - the podcast catalog, newest first
  • Recent - sources played this session
  • Footer - current source, progress and volume

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  Space        Play/Pause
  ↑/↓          Volume up/down
  ←/→          Seek back/forward
  n/p          Next/previous episode
  l            Back to the live stream
  j/k, Enter   Select and play an episode
  /            Play a URL
  c            Copy the source URL`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "Refresh interval in milliseconds (default: tui.refresh_interval)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	p, err := newPlayer(cfg, playerOptions{Quiet: true})
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	refresh := cfg.TUI.RefreshInterval
	if tuiRefresh > 0 {
		refresh = tuiRefresh
	}

	app := tui.NewApp(tui.Options{
		Engine:      p.engine,
		Catalog:     p.catalog,
		Resolver:    p.resolver,
		Station:     cfg.Station.Name,
		RefreshRate: time.Duration(refresh) * time.Millisecond,
		Autoplay:    cfg.Playback.Autoplay,
		Logger:      p.log,
	})
	p.onTitle = append(p.onTitle, func(t nowplaying.Title) { app.SetLiveTitle(t.String()) })

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p.start(ctx, cfg)
	return tui.Run(ctx, app)
}
