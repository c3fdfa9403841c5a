// Package mirror races redundant endpoint probes and adopts the first
// non-empty result. Mirror latency is wildly variable: waiting for every
// mirror serializes the slowest one into every request, while firing and
// forgetting leaves losers holding sockets until their own timeouts. The
// race therefore cancels every remaining probe the moment a winner lands.
package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/farsistream-cli/farsistream/log"
	"github.com/farsistream-cli/farsistream/source"
)

// Probe identifies one endpoint attempt. Probes are transient: they exist
// only for the duration of a single Race call.
type Probe struct {
	// 1-based mirror index, preserved on the winning videos.
	Index int
	// Derived endpoint URL to hit.
	URL string
}

// ProbeFunc executes a single probe. Implementations must honor ctx
// cancellation promptly so a superseded probe releases its connection, and
// must return only videos that already passed the trust policy: adopting a
// winner cancels every other probe, so an unvetted result coming back
// non-empty would knock trustworthy slower mirrors out of the race.
type ProbeFunc func(ctx context.Context, p Probe) ([]*source.Video, error)

// Race launches one child probe per endpoint and returns the first non-empty
// result. Every probe runs under the race's own cancellable scope: no probe
// survives past the call, and a loser finishing after the winner is simply
// discarded, never surfaced.
//
// All probes finishing empty or erroring is a legitimate negative (nil, nil);
// the overall deadline expiring first is an error for the caller to map to a
// transport failure.
func Race(ctx context.Context, probes []Probe, run ProbeFunc, overall time.Duration) ([]*source.Video, error) {
	if len(probes) == 0 {
		return nil, nil
	}

	raceCtx, cancel := context.WithTimeout(ctx, overall)
	defer cancel()

	type outcome struct {
		probe  Probe
		videos []*source.Video
		err    error
	}

	// Buffered so losers never block on send after the race has been decided.
	results := make(chan outcome, len(probes))

	for _, p := range probes {
		go func(p Probe) {
			videos, err := run(raceCtx, p)
			results <- outcome{probe: p, videos: videos, err: err}
		}(p)
	}

	for done := 0; done < len(probes); done++ {
		select {
		case <-raceCtx.Done():
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("mirror race: %w", raceCtx.Err())

		case out := <-results:
			if out.err != nil {
				log.Debugf("mirror: probe %d (%s) failed: %v", out.probe.Index, out.probe.URL, out.err)
				continue
			}
			if len(out.videos) == 0 {
				log.Debugf("mirror: probe %d (%s) returned no streams", out.probe.Index, out.probe.URL)
				continue
			}

			log.Infof("mirror: probe %d won with %d stream(s)", out.probe.Index, len(out.videos))
			return out.videos, nil
		}
	}

	// Every probe came back empty or broken; that's an absent asset, not a failure.
	return nil, nil
}
