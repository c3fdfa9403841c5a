package rescache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/farsistream-cli/farsistream/source"
	"github.com/farsistream-cli/farsistream/trust"
	. "github.com/smartystreets/goconvey/convey"
)

func testValidator() *trust.Validator {
	return trust.NewValidator([]string{"farsiplex.com"}, true)
}

func successOnce(calls *atomic.Int32) ResolveFunc {
	return func(context.Context) source.Result {
		calls.Add(1)
		return source.Success([]*source.Video{{URL: "https://farsicdn.net/v.1080p.mp4", Quality: "1080p"}})
	}
}

func TestGetOrResolve(t *testing.T) {
	Convey("GetOrResolve", t, func() {
		ctx := context.Background()

		Convey("Second lookup within the TTL does not resolve again", func() {
			c := New(testValidator(), time.Minute)
			var calls atomic.Int32

			first := c.GetOrResolve(ctx, "https://farsiplex.com/movie/beretta/", successOnce(&calls))
			second := c.GetOrResolve(ctx, "https://farsiplex.com/movie/beretta/", successOnce(&calls))

			So(first.IsSuccess(), ShouldBeTrue)
			So(second.IsSuccess(), ShouldBeTrue)
			So(calls.Load(), ShouldEqual, 1)
		})

		Convey("URL variants of the same page share one entry", func() {
			c := New(testValidator(), time.Minute)
			var calls atomic.Int32

			c.GetOrResolve(ctx, "http://FARSIPLEX.com/movie/beretta/", successOnce(&calls))
			c.GetOrResolve(ctx, "https://farsiplex.com/movie/beretta", successOnce(&calls))
			c.GetOrResolve(ctx, "https://farsiplex.com:443/movie/beretta/#player", successOnce(&calls))

			So(calls.Load(), ShouldEqual, 1)
		})

		Convey("Negatives are never cached", func() {
			c := New(testValidator(), time.Minute)
			var calls atomic.Int32

			failing := func(context.Context) source.Result {
				calls.Add(1)
				return source.NetworkError(errors.New("mirror down"))
			}

			c.GetOrResolve(ctx, "https://farsiplex.com/movie/x/", failing)
			res := c.GetOrResolve(ctx, "https://farsiplex.com/movie/x/", failing)

			So(res.Kind(), ShouldEqual, source.KindNetworkError)
			So(calls.Load(), ShouldEqual, 2)
		})

		Convey("Entries expire after the TTL", func() {
			c := New(testValidator(), time.Minute)
			now := time.Now()
			c.now = func() time.Time { return now }

			var calls atomic.Int32
			c.GetOrResolve(ctx, "https://farsiplex.com/movie/y/", successOnce(&calls))

			now = now.Add(2 * time.Minute)
			c.GetOrResolve(ctx, "https://farsiplex.com/movie/y/", successOnce(&calls))

			So(calls.Load(), ShouldEqual, 2)
		})

		Convey("Concurrent lookups of one key coalesce into a single resolution", func() {
			c := New(testValidator(), time.Minute)
			var calls atomic.Int32

			slow := func(context.Context) source.Result {
				calls.Add(1)
				time.Sleep(50 * time.Millisecond)
				return source.Success([]*source.Video{{URL: "https://farsicdn.net/v.mp4"}})
			}

			// Assertions collect here: So must not run on goroutines that
			// lack the convey context.
			results := make(chan source.Result, 10)

			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					results <- c.GetOrResolve(ctx, "https://farsiplex.com/movie/z/", slow)
				}()
			}
			wg.Wait()
			close(results)

			for res := range results {
				So(res.IsSuccess(), ShouldBeTrue)
			}
			So(calls.Load(), ShouldEqual, 1)
		})

		Convey("Untrusted URLs are rejected without resolving", func() {
			c := New(testValidator(), time.Minute)
			var calls atomic.Int32

			res := c.GetOrResolve(ctx, "https://evil.example/movie/", successOnce(&calls))

			So(res.Kind(), ShouldEqual, source.KindSecurityRejected)
			So(calls.Load(), ShouldEqual, 0)
		})

		Convey("Returned source lists are independent copies", func() {
			c := New(testValidator(), time.Minute)
			var calls atomic.Int32

			first := c.GetOrResolve(ctx, "https://farsiplex.com/movie/w/", successOnce(&calls))
			first.Sources()[0].URL = "clobbered"

			second := c.GetOrResolve(ctx, "https://farsiplex.com/movie/w/", successOnce(&calls))
			So(second.Sources()[0].URL, ShouldEqual, "https://farsicdn.net/v.1080p.mp4")
		})
	})
}

func TestPrime(t *testing.T) {
	Convey("Prime", t, func() {
		ctx := context.Background()
		c := New(testValidator(), time.Minute)
		var calls atomic.Int32

		Convey("A primed page is already warm on the first real lookup", func() {
			c.Prime(ctx, "https://farsiplex.com/movie/beretta/", successOnce(&calls))
			c.Close()

			res := c.GetOrResolve(ctx, "https://farsiplex.com/movie/beretta/", successOnce(&calls))

			So(res.IsSuccess(), ShouldBeTrue)
			So(calls.Load(), ShouldEqual, 1)
		})

		Convey("Close returns even when priming hit an untrusted URL", func() {
			c.Prime(ctx, "https://evil.example/movie/", successOnce(&calls))
			c.Close()

			So(calls.Load(), ShouldEqual, 0)
		})
	})
}

func TestInvalidate(t *testing.T) {
	Convey("Invalidate", t, func() {
		ctx := context.Background()
		c := New(testValidator(), time.Minute)
		var calls atomic.Int32

		c.GetOrResolve(ctx, "https://farsiplex.com/movie/beretta/", successOnce(&calls))
		c.Invalidate("http://farsiplex.com/movie/beretta")
		c.GetOrResolve(ctx, "https://farsiplex.com/movie/beretta/", successOnce(&calls))

		So(calls.Load(), ShouldEqual, 2)
	})
}
