package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/tessro/onair/internal/errors"
)

var nowCmd = &cobra.Command{
	Use:     "nowplaying",
	Aliases: []string{"now", "np"},
	Short:   "Show what is on air",
	Long:    `Fetch the title currently airing on the live stream once and print it.`,
	RunE:    runNow,
}

func init() {
	rootCmd.AddCommand(nowCmd)
}

func runNow(cmd *cobra.Command, args []string) error {
	if cfg.Station.NowPlayingURL == "" && !cfg.Station.UseICY {
		return apperrors.WithSuggestion(
			fmt.Errorf("%w: no now-playing source", apperrors.ErrInvalidConfig),
			"Set station.now_playing_url or station.use_icy = true in ~/.onairrc")
	}

	log, closer, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Podcasts.Timeout)*time.Second)
	defer cancel()

	title, err := newTitleFetcher(cfg, log).Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch now playing: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(title)
	}
	if title.IsZero() {
		Minimal("Nothing announced")
		return nil
	}
	Normal(cfg.Station.Name, title.String())
	return nil
}
