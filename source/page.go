// Package source defines the domain models for content pages and resolved video streams.
package source

import (
	"github.com/samber/mo"
)

// PageType identifies the kind of content a page hosts.
type PageType string

const (
	PageMovie   PageType = "movie"
	PageEpisode PageType = "episode"
	PageSeries  PageType = "series"
)

// Page references a single content page to resolve. It is created by the
// caller per playback request and never persisted by the engine.
type Page struct {
	// Canonical URL of the content page.
	URL string `json:"url"`
	// Content kind (movie, episode, series).
	Type PageType `json:"type"`
	// Site-internal post ID, when the metadata layer knows it.
	// Enables the numbered mirror API without re-discovering the ID from HTML.
	InternalID mo.Option[int] `json:"-"`
}

// String returns the canonical string representation of the page reference.
func (p *Page) String() string {
	return p.URL
}

// APIType maps the page type to the DooPlay REST route segment.
func (p *Page) APIType() string {
	switch p.Type {
	case PageEpisode:
		return "episodes"
	case PageSeries:
		return "tvshows"
	default:
		return "movie"
	}
}
