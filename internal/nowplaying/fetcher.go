// Package nowplaying polls the currently airing title of the live stream.
package nowplaying

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/tessro/onair/internal/httpclient"
)

// ErrNoTitle is returned when a source answered without a usable title.
var ErrNoTitle = errors.New("no now-playing title")

// Title is the currently airing track.
type Title struct {
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
}

// IsZero reports whether t carries no title.
func (t Title) IsZero() bool {
	return t.Title == "" && t.Artist == ""
}

func (t Title) String() string {
	switch {
	case t.Artist == "":
		return t.Title
	case t.Title == "":
		return t.Artist
	default:
		return t.Artist + " - " + t.Title
	}
}

// Fetcher returns the current title.
type Fetcher interface {
	Fetch(ctx context.Context) (Title, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (Title, error)

func (f FetcherFunc) Fetch(ctx context.Context) (Title, error) { return f(ctx) }

// JSONFetcher reads the station endpoint:
//
//	{ "now_playing": { "title": "...", "song": "...", "artist": "..." } }
type JSONFetcher struct {
	Client *httpclient.Client
	URL    string
}

type nowPlayingResponse struct {
	NowPlaying struct {
		Title  string `json:"title"`
		Song   string `json:"song"`
		Artist string `json:"artist"`
	} `json:"now_playing"`
}

func (f *JSONFetcher) Fetch(ctx context.Context) (Title, error) {
	if f.URL == "" {
		return Title{}, fmt.Errorf("now-playing endpoint not configured")
	}
	var resp nowPlayingResponse
	if err := f.Client.GetJSON(ctx, f.URL, &resp); err != nil {
		return Title{}, err
	}

	np := resp.NowPlaying
	t := Title{
		Title:  clean(np.Title),
		Artist: clean(np.Artist),
	}
	if t.Title == "" {
		t.Title = clean(np.Song)
	}
	if t.Title == "" {
		return Title{}, ErrNoTitle
	}
	return t, nil
}

// Chain tries each fetcher in order and returns the first title.
type Chain []Fetcher

func (c Chain) Fetch(ctx context.Context) (Title, error) {
	var errs []error
	for _, f := range c {
		t, err := f.Fetch(ctx)
		if err == nil {
			return t, nil
		}
		if ctx.Err() != nil {
			return Title{}, ctx.Err()
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Title{}, ErrNoTitle
	}
	return Title{}, errors.Join(errs...)
}

func clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}
