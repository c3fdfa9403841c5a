// Package fetch performs single bounded HTTP reads: one timeout covering
// connect and read, a hard byte cap, and no internal retry. Redundancy lives
// one level up in the mirror race, never here.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/farsistream-cli/farsistream/constant"
	"github.com/farsistream-cli/farsistream/key"
	"github.com/farsistream-cli/farsistream/log"
	"github.com/farsistream-cli/farsistream/network"
	"github.com/spf13/viper"
)

// Fetcher issues bounded GET requests through a shared HTTP client.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	timeout  time.Duration
}

// New builds a fetcher with explicit bounds.
func New(client *http.Client, maxBytes int64, timeout time.Duration) *Fetcher {
	return &Fetcher{client: client, maxBytes: maxBytes, timeout: timeout}
}

// PageFetcher builds the fetcher used for content pages, from global configuration.
func PageFetcher() *Fetcher {
	return New(
		network.Pick(),
		viper.GetInt64(key.FetchMaxPageBytes),
		time.Duration(viper.GetInt(key.FetchTimeoutSeconds))*time.Second,
	)
}

// MirrorFetcher builds the tighter-bounded fetcher used for mirror API probes.
func MirrorFetcher() *Fetcher {
	return New(
		network.Pick(),
		viper.GetInt64(key.FetchMaxMirrorBytes),
		time.Duration(viper.GetInt(key.MirrorsProbeTimeoutSeconds))*time.Second,
	)
}

// Fetch performs one GET and returns at most maxBytes of the body. Bodies
// larger than the cap are truncated, not failed: extraction strategies work
// best-effort on partial content, and the truncation is logged instead.
// The context bounds the whole request; cancelling it releases the connection.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	if origin := originOf(req.URL); origin != "" {
		req.Header.Set("Referer", origin)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	// Read one byte past the cap to tell "exactly at cap" from "truncated".
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}

	if int64(len(body)) > f.maxBytes {
		log.Warnf("fetch: truncated %s at %d bytes", rawURL, f.maxBytes)
		body = body[:f.maxBytes]
	}

	return body, nil
}

// MaxBytes exposes the configured cap, used by strategies to size their own limits.
func (f *Fetcher) MaxBytes() int64 {
	return f.maxBytes
}

// originOf derives the scheme://host origin used as the Referer header,
// matching what the upstream theme expects from a browser session.
func originOf(u *url.URL) string {
	if u == nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
