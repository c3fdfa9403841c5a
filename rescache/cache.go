// Package rescache memoizes successful resolutions for a short TTL. Stream
// URLs on these CDNs are frequently signed and short-lived, so the cache is
// in-memory only and deliberately forgets across runs. Negatives are never
// stored: a transient mirror outage must not poison later attempts.
package rescache

import (
	"context"
	"sync"
	"time"

	"github.com/farsistream-cli/farsistream/key"
	"github.com/farsistream-cli/farsistream/log"
	"github.com/farsistream-cli/farsistream/source"
	"github.com/farsistream-cli/farsistream/trust"
	"github.com/spf13/viper"
	"golang.org/x/sync/singleflight"
)

// ResolveFunc performs one uncached resolution for the URL the cache missed on.
type ResolveFunc func(ctx context.Context) source.Result

// Cache is a TTL map over normalized page URLs with request coalescing:
// concurrent lookups of the same key share a single underlying resolution.
type Cache struct {
	validator *trust.Validator
	ttl       time.Duration

	mu      sync.Mutex
	entries map[string]entry
	group   singleflight.Group
	primes  sync.WaitGroup

	// Injectable clock for expiry tests.
	now func() time.Time
}

type entry struct {
	result  source.Result
	expires time.Time
}

// New builds a cache with an explicit TTL.
func New(validator *trust.Validator, ttl time.Duration) *Cache {
	return &Cache{
		validator: validator,
		ttl:       ttl,
		entries:   make(map[string]entry),
		now:       time.Now,
	}
}

// FromConfig builds the cache from global configuration.
func FromConfig(validator *trust.Validator) *Cache {
	return New(validator, time.Duration(viper.GetInt(key.CacheTTLMinutes))*time.Minute)
}

// GetOrResolve returns the cached result for the page URL or runs resolve
// once to produce it. Scheme, host-case and trailing-slash variants of the
// same page collapse to one key. Only successful results enter the cache.
func (c *Cache) GetOrResolve(ctx context.Context, rawURL string, resolve ResolveFunc) source.Result {
	cacheKey, err := c.validator.NormalizeKey(rawURL)
	if err != nil {
		return source.SecurityRejected(err.Error())
	}

	if res, ok := c.lookup(cacheKey); ok {
		log.Debugf("rescache: hit for %s", cacheKey)
		return res
	}

	shared, _, _ := c.group.Do(cacheKey, func() (interface{}, error) {
		// A racer may have filled the entry while this call waited its turn.
		if res, ok := c.lookup(cacheKey); ok {
			return res, nil
		}

		res := resolve(ctx)
		if res.IsSuccess() {
			c.store(cacheKey, res)
		}
		return res, nil
	})

	return shared.(source.Result)
}

// Invalidate drops the entry for a page URL, typically after a cached stream
// turned out stale at playback time.
func (c *Cache) Invalidate(rawURL string) {
	cacheKey, err := c.validator.NormalizeKey(rawURL)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey)
}

// Prime resolves a page in the background so a later lookup lands warm.
// Failures are silent; priming is only ever a hint. The worker is tied to
// the cache, not detached: it obeys ctx and Close waits for it.
func (c *Cache) Prime(ctx context.Context, rawURL string, resolve ResolveFunc) {
	c.primes.Add(1)
	go func() {
		defer c.primes.Done()
		res := c.GetOrResolve(ctx, rawURL, resolve)
		log.Debugf("rescache: primed %s: %s", rawURL, res.String())
	}()
}

// Close blocks until every in-flight priming worker has finished.
func (c *Cache) Close() {
	c.primes.Wait()
}

func (c *Cache) lookup(cacheKey string) (source.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[cacheKey]
	if !ok {
		return source.Result{}, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, cacheKey)
		return source.Result{}, false
	}
	return e.result, true
}

func (c *Cache) store(cacheKey string, res source.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey] = entry{result: res, expires: c.now().Add(c.ttl)}
}
