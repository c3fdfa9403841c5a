package extract

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/farsistream-cli/farsistream/match"
	"github.com/farsistream-cli/farsistream/source"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEmbeddedScript(t *testing.T) {
	Convey("EmbeddedScript", t, func() {
		page := &source.Page{URL: "https://farsiplex.com/movie/beretta/", Type: source.PageMovie}
		matcher := match.New(1024*1024, time.Second)

		Convey("Finds stream URLs inside player setup code", func() {
			doc := docOf(`<script>
				jwplayer("p").setup({file: "https://farsicdn.net/beretta.1080p.mp4"});
			</script>
			<script>var alt = 'https://farsicdn.net/beretta.720p.m3u8?token=abc';</script>`)

			strategy := NewEmbeddedScript(matcher, 64*1024)
			videos, err := strategy.Extract(context.Background(), page, doc)

			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 2)
			So(videos[0].URL, ShouldEqual, "https://farsicdn.net/beretta.1080p.mp4")
			So(videos[1].URL, ShouldEqual, "https://farsicdn.net/beretta.720p.m3u8?token=abc")
		})

		Convey("Deduplicates repeated URLs", func() {
			doc := docOf(`<script>a("https://farsicdn.net/x.mp4")</script>
				<script>b("https://farsicdn.net/x.mp4")</script>`)

			strategy := NewEmbeddedScript(matcher, 64*1024)
			videos, err := strategy.Extract(context.Background(), page, doc)

			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 1)
		})

		Convey("Skips scripts above the size cap", func() {
			huge := "<script>" + strings.Repeat("x", 500) + `"https://farsicdn.net/hidden.mp4"</script>`
			doc := docOf(huge)

			strategy := NewEmbeddedScript(matcher, 100)
			videos, err := strategy.Extract(context.Background(), page, doc)

			So(err, ShouldBeNil)
			So(videos, ShouldBeEmpty)
		})

		Convey("Ignores non-media URLs", func() {
			doc := docOf(`<script>track("https://analytics.example/ping.gif")</script>`)

			strategy := NewEmbeddedScript(matcher, 64*1024)
			videos, err := strategy.Extract(context.Background(), page, doc)

			So(err, ShouldBeNil)
			So(videos, ShouldBeEmpty)
		})
	})
}
