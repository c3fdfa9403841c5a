package mirror

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/farsistream-cli/farsistream/source"
	. "github.com/smartystreets/goconvey/convey"
)

func probesOf(n int) []Probe {
	out := make([]Probe, n)
	for i := range out {
		out[i] = Probe{Index: i + 1, URL: "https://farsiplex.com/wp-json/dooplayer/v2/1/movie/1"}
	}
	return out
}

func TestRace(t *testing.T) {
	Convey("Race", t, func() {
		Convey("Fastest non-empty probe wins", func() {
			delays := map[int]time.Duration{1: 300 * time.Millisecond, 2: 200 * time.Millisecond, 3: 20 * time.Millisecond}

			run := func(ctx context.Context, p Probe) ([]*source.Video, error) {
				select {
				case <-time.After(delays[p.Index]):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				return []*source.Video{{URL: "https://cdn.example/v.mp4", Quality: "1080p", Mirror: p.Index}}, nil
			}

			start := time.Now()
			videos, err := Race(context.Background(), probesOf(3), run, time.Second)

			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 1)
			So(videos[0].Mirror, ShouldEqual, 3)
			So(time.Since(start), ShouldBeLessThan, 150*time.Millisecond)
		})

		Convey("Losers are cancelled once a winner lands", func() {
			var cancelled atomic.Int32

			run := func(ctx context.Context, p Probe) ([]*source.Video, error) {
				if p.Index == 1 {
					return []*source.Video{{URL: "https://cdn.example/v.mp4", Mirror: 1}}, nil
				}
				select {
				case <-ctx.Done():
					cancelled.Add(1)
					return nil, ctx.Err()
				case <-time.After(2 * time.Second):
					return nil, errors.New("never cancelled")
				}
			}

			videos, err := Race(context.Background(), probesOf(3), run, 5*time.Second)

			So(err, ShouldBeNil)
			So(videos[0].Mirror, ShouldEqual, 1)

			// Give the losers a beat to observe the cancellation.
			time.Sleep(100 * time.Millisecond)
			So(cancelled.Load(), ShouldEqual, 2)
		})

		Convey("A slow winner still beats fast empties and errors", func() {
			run := func(ctx context.Context, p Probe) ([]*source.Video, error) {
				switch p.Index {
				case 1:
					return nil, errors.New("mirror down")
				case 2:
					return nil, nil
				default:
					time.Sleep(50 * time.Millisecond)
					return []*source.Video{{URL: "https://cdn.example/v.mp4", Mirror: 3}}, nil
				}
			}

			videos, err := Race(context.Background(), probesOf(3), run, time.Second)

			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 1)
			So(videos[0].Mirror, ShouldEqual, 3)
		})

		Convey("All probes empty or failing is a clean negative", func() {
			run := func(ctx context.Context, p Probe) ([]*source.Video, error) {
				if p.Index%2 == 0 {
					return nil, errors.New("boom")
				}
				return nil, nil
			}

			videos, err := Race(context.Background(), probesOf(4), run, time.Second)

			So(err, ShouldBeNil)
			So(videos, ShouldBeNil)
		})

		Convey("Overall deadline caps the race", func() {
			run := func(ctx context.Context, p Probe) ([]*source.Video, error) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(5 * time.Second):
					return []*source.Video{{URL: "https://cdn.example/v.mp4"}}, nil
				}
			}

			start := time.Now()
			videos, err := Race(context.Background(), probesOf(2), run, 50*time.Millisecond)

			So(err, ShouldNotBeNil)
			So(videos, ShouldBeNil)
			So(time.Since(start), ShouldBeLessThan, time.Second)
		})

		Convey("Caller cancellation surfaces as the caller's error", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			run := func(ctx context.Context, p Probe) ([]*source.Video, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}

			_, err := Race(ctx, probesOf(2), run, time.Second)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("No probes means nothing to race", func() {
			videos, err := Race(context.Background(), nil, nil, time.Second)
			So(err, ShouldBeNil)
			So(videos, ShouldBeNil)
		})
	})
}
