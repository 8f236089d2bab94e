package catalog

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/tessro/onair/internal/core"
	apperrors "github.com/tessro/onair/internal/errors"
	"github.com/tessro/onair/internal/resolver"
)

// Feed is one parsed podcast feed.
type Feed struct {
	URL      string
	Name     string
	Episodes []core.Episode
}

// Parse decodes an RSS or Atom document in any declared charset. Items
// without an audio enclosure are skipped.
func Parse(data []byte, feedURL string) (Feed, error) {
	doc, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return Feed{}, fmt.Errorf("%w: %s: %v", apperrors.ErrFeedUnavailable, feedURL, err)
	}

	feed := Feed{
		URL:  feedURL,
		Name: strings.TrimSpace(doc.Title),
	}
	showArt := feedArtwork(doc)
	for _, it := range doc.Items {
		u := audioEnclosure(it)
		if u == "" {
			continue
		}
		title := strings.TrimSpace(it.Title)

		slug := resolver.Slugify(title)
		if slug == "" {
			slug = "episode"
		}

		artwork := itemArtwork(it)
		if artwork == "" {
			artwork = showArt
		}

		ep := core.Episode{
			Slug:      slug,
			URL:       u,
			Title:     title,
			Artwork:   strings.TrimSpace(artwork),
			FeedName:  feed.Name,
			Published: published(it),
		}
		if it.ITunesExt != nil {
			ep.DurationHint = durationHint(it.ITunesExt.Duration)
		}
		feed.Episodes = append(feed.Episodes, ep)
	}
	feed.Episodes = uniqueSlugs(feed.Episodes)
	return feed, nil
}

// audioEnclosure returns the first audio enclosure URL. Untyped enclosures
// count as audio since many feeds leave the type out.
func audioEnclosure(it *gofeed.Item) string {
	for _, enc := range it.Enclosures {
		u := strings.TrimSpace(enc.URL)
		if u == "" {
			continue
		}
		typ := strings.ToLower(strings.TrimSpace(enc.Type))
		if typ == "" || strings.HasPrefix(typ, "audio/") {
			return u
		}
	}
	return ""
}

func itemArtwork(it *gofeed.Item) string {
	if it.ITunesExt != nil && it.ITunesExt.Image != "" {
		return it.ITunesExt.Image
	}
	if it.Image != nil {
		return it.Image.URL
	}
	return ""
}

func feedArtwork(doc *gofeed.Feed) string {
	if doc.ITunesExt != nil && doc.ITunesExt.Image != "" {
		return doc.ITunesExt.Image
	}
	if doc.Image != nil {
		return doc.Image.URL
	}
	return ""
}

func published(it *gofeed.Item) time.Time {
	switch {
	case it.PublishedParsed != nil:
		return *it.PublishedParsed
	case it.UpdatedParsed != nil:
		return *it.UpdatedParsed
	}
	return time.Time{}
}

// durationHint normalizes itunes:duration, which is either seconds or
// [hh:]mm:ss, into the [h:]mm:ss display form.
func durationHint(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return formatDuration(secs)
	}
	return s
}

func formatDuration(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	sec := secs % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
