package source

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestVideo(t *testing.T) {
	Convey("Video", t, func() {
		v := &Video{
			URL:     "https://cdn.farsiplex.com/vid.mp4",
			Quality: "1080p",
		}

		Convey("String representation", func() {
			So(v.String(), ShouldEqual, "1080p")
			v.Quality = ""
			So(v.String(), ShouldEqual, "https://cdn.farsiplex.com/vid.mp4")
		})

		Convey("Quality ranking", func() {
			rank := func(q string) int {
				return (&Video{Quality: q}).QualityRank()
			}

			So(rank("1080p"), ShouldBeGreaterThan, rank("720p"))
			So(rank("720p"), ShouldBeGreaterThan, rank("HD"))
			So(rank("HD"), ShouldBeGreaterThan, rank("480p"))
			So(rank("480p"), ShouldBeGreaterThan, rank("360p"))
			So(rank("whatever"), ShouldEqual, 0)
			So(rank(""), ShouldEqual, 0)
		})

		Convey("Clone is independent", func() {
			c := v.Clone()
			c.Quality = "720p"
			So(v.Quality, ShouldNotEqual, c.Quality)
		})
	})
}
