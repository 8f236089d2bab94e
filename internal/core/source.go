package core

import (
	"path"
	"strings"

	"github.com/mitchellh/hashstructure/v2"
)

// SourceKind selects between the live stream and an on-demand track.
type SourceKind string

const (
	KindLive  SourceKind = "live"
	KindTrack SourceKind = "track"
)

// Source is the audio the engine plays. The zero value is not valid; use
// LiveSource or TrackSource.
type Source struct {
	Kind    SourceKind `json:"kind"`
	URL     string     `json:"url,omitempty"`
	Title   string     `json:"title,omitempty"`
	Artist  string     `json:"artist,omitempty"`
	Artwork string     `json:"artwork,omitempty"`
	Slug    string     `json:"slug,omitempty"`
}

// LiveSource returns the live stream sentinel.
func LiveSource() Source {
	return Source{Kind: KindLive}
}

// TrackSource returns an on-demand source for the given URL.
func TrackSource(url, title string) Source {
	return Source{Kind: KindTrack, URL: url, Title: title}
}

// IsLive reports whether s is the live stream sentinel.
func (s Source) IsLive() bool {
	return s.Kind == KindLive
}

// Equal reports whether two sources are structurally identical.
func (s Source) Equal(o Source) bool {
	return s == o
}

// Fingerprint returns a stable hash of the source. Two sources have the same
// fingerprint exactly when they are Equal.
func (s Source) Fingerprint() uint64 {
	h, err := hashstructure.Hash(s, hashstructure.FormatV2, nil)
	if err != nil {
		return 0
	}
	return h
}

// DisplayTitle returns the title to show for the source, falling back to the
// file name of the URL.
func (s Source) DisplayTitle() string {
	if s.IsLive() {
		return "En direct"
	}
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}
	base := path.Base(s.URL)
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
