// Package catalog loads podcast episodes from RSS and Atom feeds.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tessro/onair/internal/core"
	apperrors "github.com/tessro/onair/internal/errors"
	"github.com/tessro/onair/internal/httpclient"
)

// maxConcurrentFeeds bounds parallel feed downloads.
const maxConcurrentFeeds = 4

// Catalog fetches the configured feeds.
type Catalog struct {
	client *httpclient.Client
	feeds  []string
	log    zerolog.Logger
}

// New creates a catalog over feeds.
func New(client *httpclient.Client, feeds []string, log zerolog.Logger) *Catalog {
	return &Catalog{
		client: client,
		feeds:  feeds,
		log:    log.With().Str("component", "catalog").Logger(),
	}
}

// Feeds returns the configured feed URLs.
func (c *Catalog) Feeds() []string {
	return c.feeds
}

// Load fetches and parses one feed.
func (c *Catalog) Load(ctx context.Context, feedURL string) (Feed, error) {
	data, err := c.client.GetBytes(ctx, feedURL)
	if err != nil {
		return Feed{}, fmt.Errorf("%w: %s: %w", apperrors.ErrFeedUnavailable, feedURL, err)
	}
	return Parse(data, feedURL)
}

// LoadAll fetches every feed concurrently. Episodes are merged newest first,
// with ties kept in feed order and then item order; a failing feed is
// reported in the result without discarding the others.
func (c *Catalog) LoadAll(ctx context.Context) *apperrors.PartialResult[[]core.Episode] {
	feeds := make([]Feed, len(c.feeds))
	errs := make([]error, len(c.feeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFeeds)

	for i, feedURL := range c.feeds {
		g.Go(func() error {
			feed, err := c.Load(gctx, feedURL)
			if err != nil {
				c.log.Warn().Err(err).Str("feed", feedURL).Msg("feed failed")
				errs[i] = err
				return nil
			}
			c.log.Debug().Str("feed", feedURL).Int("episodes", len(feed.Episodes)).Msg("feed loaded")
			feeds[i] = feed
			return nil
		})
	}
	_ = g.Wait()

	result := &apperrors.PartialResult[[]core.Episode]{}
	for i := range c.feeds {
		if errs[i] != nil {
			result.AddError(errs[i])
			continue
		}
		result.Data = append(result.Data, feeds[i].Episodes...)
	}
	sortEpisodes(result.Data)
	result.Data = uniqueSlugs(result.Data)
	return result
}

func sortEpisodes(eps []core.Episode) {
	sort.SliceStable(eps, func(i, j int) bool {
		return eps[i].Published.After(eps[j].Published)
	})
}

// uniqueSlugs suffixes repeated slugs with -2, -3 and so on. The first
// episode with a slug keeps it, and no suffix reuses a slug another episode
// already has.
func uniqueSlugs(eps []core.Episode) []core.Episode {
	taken := make(map[string]bool, len(eps))
	for _, ep := range eps {
		taken[ep.Slug] = true
	}
	kept := make(map[string]bool, len(eps))
	for i := range eps {
		base := eps[i].Slug
		if !kept[base] {
			kept[base] = true
			continue
		}
		for n := 2; ; n++ {
			s := fmt.Sprintf("%s-%d", base, n)
			if !taken[s] {
				taken[s] = true
				eps[i].Slug = s
				break
			}
		}
	}
	return eps
}
