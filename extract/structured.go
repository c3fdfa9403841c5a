package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/farsistream-cli/farsistream/source"
)

// StructuredTag pulls streams out of explicit markup: <source src>,
// <video src> and the theme's lazy-loading data-src attributes. Markup the
// site author wrote by hand is the most authoritative signal there is, so
// this strategy runs first.
type StructuredTag struct{}

// NewStructuredTag builds the structured-markup strategy.
func NewStructuredTag() *StructuredTag {
	return &StructuredTag{}
}

func (s *StructuredTag) String() string {
	return "structured-tag"
}

func (s *StructuredTag) Extract(_ context.Context, page *source.Page, doc *goquery.Document) ([]*source.Video, error) {
	var out []*source.Video

	add := func(ref string) {
		if ref == "" {
			return
		}
		out = append(out, candidate(absolutize(page.URL, ref)))
	}

	doc.Find("source[src]").Each(func(_ int, sel *goquery.Selection) {
		add(sel.AttrOr("src", ""))
	})
	doc.Find("video[src]").Each(func(_ int, sel *goquery.Selection) {
		add(sel.AttrOr("src", ""))
	})

	// data-src is also used for lazy-loaded posters, so only media-looking
	// values count here.
	doc.Find("[data-src]").Each(func(_ int, sel *goquery.Selection) {
		if ref := sel.AttrOr("data-src", ""); looksLikeMedia(ref) {
			add(ref)
		}
	})

	return out, nil
}

// looksLikeMedia reports whether a URL plausibly points at a stream file.
func looksLikeMedia(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.Contains(lower, ".mp4") || strings.Contains(lower, ".m3u8")
}
