// Package resolver orchestrates a full resolution: trust check, cache
// lookup, page fetch, strategy chain, candidate re-validation and ordering.
// It is the only package that assembles the engine's parts; everything it
// returns is a source.Result variant, never a bare error.
package resolver

import (
	"context"
	"errors"
	"net"
	"net/url"
	"sort"

	"github.com/farsistream-cli/farsistream/extract"
	"github.com/farsistream-cli/farsistream/fetch"
	"github.com/farsistream-cli/farsistream/log"
	"github.com/farsistream-cli/farsistream/rescache"
	"github.com/farsistream-cli/farsistream/source"
	"github.com/farsistream-cli/farsistream/trust"
	"github.com/samber/lo"
)

// Engine resolves content pages into ordered stream lists.
type Engine struct {
	validator *trust.Validator
	fetcher   *fetch.Fetcher
	chain     *extract.Chain
	cache     *rescache.Cache
}

// New assembles an engine from explicit parts.
func New(validator *trust.Validator, fetcher *fetch.Fetcher, chain *extract.Chain, cache *rescache.Cache) *Engine {
	return &Engine{validator: validator, fetcher: fetcher, chain: chain, cache: cache}
}

// Default assembles the engine from global configuration.
func Default() *Engine {
	validator := trust.FromConfig()
	return New(
		validator,
		fetch.PageFetcher(),
		extract.Default(validator),
		rescache.FromConfig(validator),
	)
}

// Resolve turns a content page reference into a Result. The page URL is
// validated before anything else happens; an untrusted page never costs a
// network round trip. Successful results come out of (and go into) the TTL
// cache under the page's canonical key.
func (e *Engine) Resolve(ctx context.Context, page *source.Page) source.Result {
	validated, err := e.validator.Validate(page.URL)
	if err != nil {
		return source.SecurityRejected(err.Error())
	}

	canonical := *page
	canonical.URL = validated

	return e.cache.GetOrResolve(ctx, validated, func(ctx context.Context) source.Result {
		return e.resolve(ctx, &canonical)
	})
}

// Invalidate drops any cached result for the page, for when a stream URL
// turned out dead at playback time.
func (e *Engine) Invalidate(rawURL string) {
	e.cache.Invalidate(rawURL)
}

// Prime warms the cache for a page in the background.
func (e *Engine) Prime(ctx context.Context, page *source.Page) {
	validated, err := e.validator.Validate(page.URL)
	if err != nil {
		return
	}

	canonical := *page
	canonical.URL = validated
	e.cache.Prime(ctx, validated, func(ctx context.Context) source.Result {
		return e.resolve(ctx, &canonical)
	})
}

// Close waits for background priming work owned by the engine's cache.
func (e *Engine) Close() {
	e.cache.Close()
}

func (e *Engine) resolve(ctx context.Context, page *source.Page) source.Result {
	body, err := e.fetcher.Fetch(ctx, page.URL)
	if err != nil {
		return source.NetworkError(err)
	}

	videos, err := e.chain.Run(ctx, page, body)
	if err != nil {
		if isTransport(err) {
			return source.NetworkError(err)
		}
		return source.ParseError(err)
	}

	videos = e.screen(videos)
	if len(videos) == 0 {
		return source.NoSources("no playable sources on page")
	}

	return source.Success(order(videos))
}

// screen re-validates every candidate. The chain already screens its own
// output, but the validated-URLs guarantee belongs to the engine, so it is
// enforced again here where a future strategy cannot forget it.
func (e *Engine) screen(videos []*source.Video) []*source.Video {
	var kept []*source.Video
	for _, v := range videos {
		validated, err := e.validator.Validate(v.URL)
		if err != nil {
			log.Warnf("resolver: dropping unvalidated source %s: %v", v.URL, err)
			continue
		}
		v.URL = validated
		kept = append(kept, v)
	}
	return kept
}

// order sorts best-first and drops duplicate URLs. Quality rank descends;
// equal ranks prefer the lower mirror index, with the URL itself as the
// final tie-break so the ordering is fully deterministic.
func order(videos []*source.Video) []*source.Video {
	sort.SliceStable(videos, func(i, j int) bool {
		a, b := videos[i], videos[j]
		if a.QualityRank() != b.QualityRank() {
			return a.QualityRank() > b.QualityRank()
		}
		if a.Mirror != b.Mirror {
			return a.Mirror < b.Mirror
		}
		return a.URL < b.URL
	})

	return lo.UniqBy(videos, func(v *source.Video) string {
		return v.URL
	})
}

// isTransport reports whether an extraction error is a network failure as
// opposed to a fault in the page itself.
func isTransport(err error) bool {
	var netErr net.Error
	var urlErr *url.Error
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.As(err, &netErr) ||
		errors.As(err, &urlErr)
}
