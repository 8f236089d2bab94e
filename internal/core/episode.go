package core

import "time"

// Episode is a podcast episode as supplied by the content catalog.
type Episode struct {
	Slug         string    `json:"slug"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	DurationHint string    `json:"duration_hint,omitempty"`
	Artwork      string    `json:"artwork,omitempty"`
	FeedName     string    `json:"feed_name,omitempty"`
	Published    time.Time `json:"published,omitempty"`
}
