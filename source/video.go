// Package source defines the domain models for content pages and resolved video streams.
package source

import (
	"regexp"
	"strconv"
)

// Video represents a streamable video resource. Construction invariant: URL
// has passed the trust validator before a Video is built from it.
type Video struct {
	// Direct URL to the stream/file.
	URL string `json:"url"`
	// Quality label (e.g. "1080p", "720p").
	Quality string `json:"quality"`
	// CDN label derived from the stream host.
	CDN string `json:"cdn,omitempty"`
	// 1-based mirror index when the stream came out of a mirror race; 0 otherwise.
	Mirror int `json:"mirror,omitempty"`
	// Approximate size in bytes when the mirror reported one.
	SizeBytes int64 `json:"size_bytes,omitempty"`
}

// String returns the quality or URL for display.
func (v *Video) String() string {
	if v.Quality != "" {
		return v.Quality
	}
	return v.URL
}

var qualityDigits = regexp.MustCompile(`^(\d{3,4})p?$`)

// QualityRank maps a quality label to an ordering weight, higher is better.
// Numeric labels rank by their vertical resolution. The bare "HD" label the
// upstream theme emits as a fallback ranks just below 720p. Unrecognized
// labels rank zero and therefore sort last.
func (v *Video) QualityRank() int {
	if m := qualityDigits.FindStringSubmatch(v.Quality); m != nil {
		rank, _ := strconv.Atoi(m[1])
		return rank
	}
	if v.Quality == "HD" {
		return 700
	}
	return 0
}

// Clone returns an independent copy so cached source lists cannot be mutated by callers.
func (v *Video) Clone() *Video {
	c := *v
	return &c
}
