package cache

import (
	"testing"

	"github.com/farsistream-cli/farsistream/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestArtifactCache(t *testing.T) {
	Convey("Given a resolution artifact", t, func() {
		key := GenerateKey("https://farsiplex.com/movie/beretta/", "resolve")
		payload := map[string]string{"best": "1080p"}

		Convey("Keys are deterministic and insensitive to case and padding", func() {
			So(key, ShouldEqual, GenerateKey("  HTTPS://FARSIPLEX.COM/movie/beretta/ ", "resolve"))
			So(key, ShouldNotEqual, GenerateKey("https://farsiplex.com/movie/beretta/", "other"))
		})

		Convey("A written artifact reads back", func() {
			So(Write(key, payload), ShouldBeNil)

			var got map[string]string
			So(Read(key, &got), ShouldBeTrue)
			So(got["best"], ShouldEqual, "1080p")
		})

		Convey("A missing artifact reads as absent", func() {
			var got map[string]string
			So(Read(GenerateKey("https://farsiplex.com/none/", "resolve"), &got), ShouldBeFalse)
		})
	})
}
