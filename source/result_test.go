package source

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestResult(t *testing.T) {
	Convey("Result", t, func() {
		Convey("Success", func() {
			r := Success([]*Video{{URL: "https://cdn.farsiplex.com/a.mp4", Quality: "720p"}})

			So(r.Kind(), ShouldEqual, KindSuccess)
			So(r.IsSuccess(), ShouldBeTrue)
			So(r.Retryable(), ShouldBeFalse)

			Convey("Sources returns copies", func() {
				got := r.Sources()
				got[0].URL = "mutated"
				So(r.Sources()[0].URL, ShouldEqual, "https://cdn.farsiplex.com/a.mp4")
			})
		})

		Convey("Negative variants", func() {
			So(NoSources("empty page").Kind(), ShouldEqual, KindNoSources)
			So(NoSources("empty page").Retryable(), ShouldBeFalse)
			So(NetworkError(errors.New("refused")).Retryable(), ShouldBeTrue)
			So(ParseError(errors.New("bad markup")).Retryable(), ShouldBeTrue)
			So(SecurityRejected("untrusted host").Retryable(), ShouldBeFalse)
		})

		Convey("String", func() {
			So(NetworkError(errors.New("refused")).String(), ShouldEqual, "network_error: refused")
			So(SecurityRejected("untrusted host").String(), ShouldEqual, "security_rejected: untrusted host")
		})

		Convey("JSON shape", func() {
			b, err := json.Marshal(NetworkError(errors.New("refused")))
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"kind":"network_error"`)
			So(string(b), ShouldContainSubstring, `"cause":"refused"`)
		})
	})
}
