// Package resolver turns a playback request into a core.Source. It performs no
// network I/O.
package resolver

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/tessro/onair/internal/core"
	apperrors "github.com/tessro/onair/internal/errors"
)

// CacheBustParam is the query parameter appended to track URLs that have no
// query string of their own.
const CacheBustParam = "cb"

// Request is either the live sentinel or a track with caller-supplied metadata.
type Request struct {
	Live    bool
	URL     string
	Title   string
	Artist  string
	Artwork string
	Slug    string
}

// Live returns the request for the live stream.
func Live() Request {
	return Request{Live: true}
}

// ForEpisode builds a track request from catalog metadata.
func ForEpisode(ep core.Episode) Request {
	return Request{
		URL:     ep.URL,
		Title:   ep.Title,
		Artist:  ep.FeedName,
		Artwork: ep.Artwork,
		Slug:    ep.Slug,
	}
}

// ForURL builds a track request for a bare URL.
func ForURL(raw string) Request {
	return Request{URL: raw}
}

// Resolver assembles sources. The zero value uses the wall clock for cache
// busting tokens.
type Resolver struct {
	token func() string
}

// New returns a Resolver. token may be nil.
func New(token func() string) *Resolver {
	return &Resolver{token: token}
}

func (r *Resolver) cacheToken() string {
	if r != nil && r.token != nil {
		return r.token()
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// Resolve validates req and returns the matching source.
func (r *Resolver) Resolve(req Request) (core.Source, error) {
	if req.Live {
		return core.LiveSource(), nil
	}

	u, err := ValidateTrackURL(req.URL)
	if err != nil {
		return core.Source{}, err
	}
	if u.RawQuery == "" {
		q := url.Values{}
		q.Set(CacheBustParam, r.cacheToken())
		u.RawQuery = q.Encode()
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		base := path.Base(u.Path)
		title = strings.TrimSuffix(base, path.Ext(base))
	}

	return core.Source{
		Kind:    core.KindTrack,
		URL:     u.String(),
		Title:   title,
		Artist:  strings.TrimSpace(req.Artist),
		Artwork: strings.TrimSpace(req.Artwork),
		Slug:    req.Slug,
	}, nil
}

// Resolve uses a default Resolver.
func Resolve(req Request) (core.Source, error) {
	return (*Resolver)(nil).Resolve(req)
}

// ValidateTrackURL parses raw, which must be an absolute http(s) URL with a
// host. Surrounding whitespace is ignored.
func ValidateTrackURL(raw string) (*url.URL, error) {
	s := strings.Trim(raw, " \r\n\t")
	if s == "" {
		return nil, fmt.Errorf("%w: missing track URL", apperrors.ErrInvalidSource)
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidSource, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme in %q", apperrors.ErrInvalidSource, s)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: no host in %q", apperrors.ErrInvalidSource, s)
	}
	return u, nil
}

// Validate checks a source that did not come from Resolve.
func Validate(src core.Source) error {
	switch src.Kind {
	case core.KindLive:
		return nil
	case core.KindTrack:
		_, err := ValidateTrackURL(src.URL)
		return err
	default:
		return fmt.Errorf("%w: unknown kind %q", apperrors.ErrInvalidSource, src.Kind)
	}
}
