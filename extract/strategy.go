// Package extract turns fetched page HTML into video stream candidates.
// Strategies run in a fixed order from most to least authoritative and the
// chain short-circuits on the first strategy whose candidates survive the
// trust validator. Candidates from untrusted hosts are dropped here, before
// anything downstream can see them.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/farsistream-cli/farsistream/log"
	"github.com/farsistream-cli/farsistream/source"
	"github.com/farsistream-cli/farsistream/trust"
)

// Strategy extracts stream candidates from a parsed content page. Returned
// candidates are unvalidated; the chain owns validation.
type Strategy interface {
	fmt.Stringer
	Extract(ctx context.Context, page *source.Page, doc *goquery.Document) ([]*source.Video, error)
}

// Chain runs strategies in order and stops at the first one yielding at
// least one candidate that passes the validator.
type Chain struct {
	validator  *trust.Validator
	strategies []Strategy
}

// NewChain builds a chain over an explicit strategy list.
func NewChain(validator *trust.Validator, strategies ...Strategy) *Chain {
	return &Chain{validator: validator, strategies: strategies}
}

// Default builds the standard four-strategy chain from global configuration.
func Default(validator *trust.Validator) *Chain {
	return NewChain(
		validator,
		NewStructuredTag(),
		NewNumberedMirrorAPIFromConfig(validator),
		NewEmbeddedScriptFromConfig(),
		NewIframeDelegationFromConfig(validator),
	)
}

// Run parses the page body once and walks the strategies. A strategy error
// is logged and the next strategy gets its chance; the first error only
// surfaces when the whole chain comes up empty, so a dead mirror API cannot
// mask a stream sitting in a script tag further down.
func (c *Chain) Run(ctx context.Context, page *source.Page, body []byte) ([]*source.Video, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", page.URL, err)
	}

	var firstErr error
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidates, err := s.Extract(ctx, page, doc)
		if err != nil {
			log.Warnf("extract: strategy %s failed on %s: %v", s, page.URL, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		kept := c.screen(candidates)
		if len(kept) > 0 {
			log.Infof("extract: strategy %s yielded %d stream(s) for %s", s, len(kept), page.URL)
			return kept, nil
		}
	}

	return nil, firstErr
}

// screen validates every candidate URL, rewriting it to the validator's
// canonical form and dropping rejects.
func (c *Chain) screen(candidates []*source.Video) []*source.Video {
	var kept []*source.Video
	for _, v := range candidates {
		validated, err := c.validator.Validate(v.URL)
		if err != nil {
			log.Warnf("extract: dropping candidate %s: %v", v.URL, err)
			continue
		}
		v.URL = validated
		kept = append(kept, v)
	}
	return kept
}

// absolutize resolves a possibly-relative reference against the page URL.
func absolutize(pageURL, ref string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// candidate builds a Video with quality and CDN derived from the URL.
func candidate(rawURL string) *source.Video {
	return &source.Video{
		URL:     rawURL,
		Quality: DetectQuality(rawURL),
		CDN:     DetectCDN(rawURL),
	}
}
