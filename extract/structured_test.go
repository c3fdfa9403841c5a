package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/farsistream-cli/farsistream/source"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func docOf(html string) *goquery.Document {
	return lo.Must(goquery.NewDocumentFromReader(strings.NewReader(html)))
}

func TestStructuredTag(t *testing.T) {
	Convey("StructuredTag", t, func() {
		page := &source.Page{URL: "https://farsiplex.com/movie/beretta/", Type: source.PageMovie}
		strategy := NewStructuredTag()

		Convey("Picks up source and video elements", func() {
			doc := docOf(`<video src="https://farsicdn.net/a.720p.mp4"></video>
				<video><source src="https://farsicdn.net/a.1080p.mp4"></video>`)

			videos, err := strategy.Extract(context.Background(), page, doc)

			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 2)
			So(videos[0].URL, ShouldEqual, "https://farsicdn.net/a.1080p.mp4")
			So(videos[0].Quality, ShouldEqual, "1080p")
			So(videos[1].URL, ShouldEqual, "https://farsicdn.net/a.720p.mp4")
		})

		Convey("Keeps media data-src, ignores lazy poster images", func() {
			doc := docOf(`<img data-src="https://farsiplex.com/poster.jpg">
				<div data-src="https://farsicdn.net/b.480p.m3u8"></div>`)

			videos, err := strategy.Extract(context.Background(), page, doc)

			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 1)
			So(videos[0].URL, ShouldEqual, "https://farsicdn.net/b.480p.m3u8")
		})

		Convey("Resolves relative references against the page", func() {
			doc := docOf(`<video src="/streams/c.mp4"></video>`)

			videos, err := strategy.Extract(context.Background(), page, doc)

			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 1)
			So(videos[0].URL, ShouldEqual, "https://farsiplex.com/streams/c.mp4")
		})

		Convey("Empty page yields nothing", func() {
			videos, err := strategy.Extract(context.Background(), page, docOf("<p>hello</p>"))
			So(err, ShouldBeNil)
			So(videos, ShouldBeEmpty)
		})
	})
}
