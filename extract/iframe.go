package extract

import (
	"bytes"
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/farsistream-cli/farsistream/fetch"
	"github.com/farsistream-cli/farsistream/log"
	"github.com/farsistream-cli/farsistream/source"
	"github.com/farsistream-cli/farsistream/trust"
)

// IframeDelegation follows the page's first trusted player iframe one level
// down and re-runs the markup and script strategies on what it finds there.
// Depth is hard-capped at one hop: iframes inside the delegated document are
// never followed, so a chain of nested players cannot turn into a crawl.
type IframeDelegation struct {
	fetcher   *fetch.Fetcher
	validator *trust.Validator
	inner     []Strategy
}

// NewIframeDelegation builds the strategy with explicit collaborators.
func NewIframeDelegation(fetcher *fetch.Fetcher, validator *trust.Validator, inner ...Strategy) *IframeDelegation {
	return &IframeDelegation{fetcher: fetcher, validator: validator, inner: inner}
}

// NewIframeDelegationFromConfig builds the strategy from global configuration.
func NewIframeDelegationFromConfig(validator *trust.Validator) *IframeDelegation {
	return NewIframeDelegation(
		fetch.PageFetcher(),
		validator,
		NewStructuredTag(),
		NewEmbeddedScriptFromConfig(),
	)
}

func (f *IframeDelegation) String() string {
	return "iframe-delegation"
}

func (f *IframeDelegation) Extract(ctx context.Context, page *source.Page, doc *goquery.Document) ([]*source.Video, error) {
	frameURL := f.pickFrame(page, doc)
	if frameURL == "" {
		return nil, nil
	}

	body, err := f.fetcher.Fetch(ctx, frameURL)
	if err != nil {
		return nil, err
	}

	frameDoc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	framePage := &source.Page{URL: frameURL, Type: page.Type}

	var out []*source.Video
	for _, s := range f.inner {
		candidates, err := s.Extract(ctx, framePage, frameDoc)
		if err != nil {
			log.Warnf("extract: %s failed inside frame %s: %v", s, frameURL, err)
			continue
		}
		out = append(out, candidates...)
	}
	return out, nil
}

// pickFrame returns the first iframe whose source passes the trust policy.
// An untrusted frame is never fetched, whatever it promises to contain.
func (f *IframeDelegation) pickFrame(page *source.Page, doc *goquery.Document) string {
	var picked string

	doc.Find("iframe[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := absolutize(page.URL, sel.AttrOr("src", ""))
		validated, err := f.validator.Validate(raw)
		if err != nil {
			log.Debugf("extract: ignoring untrusted frame %s on %s", raw, page.URL)
			return true
		}
		picked = validated
		return false
	})

	return picked
}
