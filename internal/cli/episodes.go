package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/onair/internal/core"
)

var episodesLimit int

var episodesCmd = &cobra.Command{
	Use:     "episodes",
	Aliases: []string{"eps"},
	Short:   "List podcast episodes",
	Long: `List episodes from the configured podcast feeds, newest first.

The SLUG column is what 'onair play <slug>' accepts.`,
	RunE: runEpisodes,
}

func init() {
	episodesCmd.Flags().IntVarP(&episodesLimit, "limit", "n", 20, "Maximum episodes to show (0 for all)")
	rootCmd.AddCommand(episodesCmd)
}

func runEpisodes(cmd *cobra.Command, args []string) error {
	log, closer, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	eps, err := loadEpisodes(cmd.Context(), newCatalog(cfg, log))
	if err != nil {
		return err
	}
	if episodesLimit > 0 && len(eps) > episodesLimit {
		eps = eps[:episodesLimit]
	}

	if JSONOutput() {
		if eps == nil {
			eps = []core.Episode{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(eps)
	}

	if len(eps) == 0 {
		fmt.Println("No episodes found")
		return nil
	}

	printEpisodes(NewTable("SLUG", "TITLE", "SHOW", "LENGTH", "PUBLISHED"), eps, time.Now())
	return nil
}

func printEpisodes(t *Table, eps []core.Episode, now time.Time) {
	for _, ep := range eps {
		published := "-"
		if !ep.Published.IsZero() {
			published = humanize.RelTime(ep.Published, now, "ago", "from now")
		}
		length := ep.DurationHint
		if length == "" {
			length = "-"
		}
		t.Row(ep.Slug, TruncateString(ep.Title, 48), TruncateString(ep.FeedName, 24), length, published)
	}
	t.Flush()
}
