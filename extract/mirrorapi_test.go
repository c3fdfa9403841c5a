package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/farsistream-cli/farsistream/fetch"
	"github.com/farsistream-cli/farsistream/source"
	"github.com/farsistream-cli/farsistream/trust"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func mirrorValidator() *trust.Validator {
	return trust.NewValidator([]string{"farsiplex.com", "farsicdn.net"}, true)
}

func TestDiscoverPostID(t *testing.T) {
	Convey("discoverPostID", t, func() {
		Convey("From the watch form", func() {
			id, ok := discoverPostID(docOf(`<form id="watch-13881"><input name="watch_episode_nonce"></form>`))
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, 13881)
		})

		Convey("From a data-post attribute", func() {
			id, ok := discoverPostID(docOf(`<li data-post="4502" data-nume="1">server 1</li>`))
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, 4502)
		})

		Convey("From the body class", func() {
			id, ok := discoverPostID(docOf(`<body class="single single-movies postid-777 logged-out"></body>`))
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, 777)
		})

		Convey("Form beats data-post beats body class", func() {
			id, ok := discoverPostID(docOf(`<body class="postid-3">
				<form id="watch-1"></form><li data-post="2"></li></body>`))
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, 1)
		})

		Convey("No markers means no id", func() {
			_, ok := discoverPostID(docOf(`<p>plain page</p>`))
			So(ok, ShouldBeFalse)
		})
	})
}

func TestNumberedMirrorAPI(t *testing.T) {
	Convey("NumberedMirrorAPI", t, func() {
		Convey("Races the numbered endpoints and adopts the first stream", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/wp-json/dooplayer/v2/13881/movie/2":
					io.WriteString(w, `{"embed_url":"https://farsiplex.com/jwplayer/?source=https%3A%2F%2Ffarsicdn.net%2Fberetta.1080p.mp4","type":"iframe"}`)
				case "/wp-json/dooplayer/v2/13881/movie/1",
					"/wp-json/dooplayer/v2/13881/movie/3":
					fmt.Fprint(w, `{"embed_url":"","type":""}`)
				default:
					w.WriteHeader(http.StatusNotFound)
				}
			}))
			defer srv.Close()

			strategy := NewNumberedMirrorAPI(fetch.New(srv.Client(), 256*1024, time.Second), mirrorValidator(), 3, 2*time.Second)
			page := &source.Page{
				URL:        srv.URL + "/movie/beretta/",
				Type:       source.PageMovie,
				InternalID: mo.Some(13881),
			}

			videos, err := strategy.Extract(context.Background(), page, docOf("<p></p>"))

			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 1)
			So(videos[0].URL, ShouldEqual, "https://farsicdn.net/beretta.1080p.mp4")
			So(videos[0].Quality, ShouldEqual, "1080p")
			So(videos[0].Mirror, ShouldEqual, 2)
		})

		Convey("Discovers the post id from markup when the ref has none", func() {
			var hit bool
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/wp-json/dooplayer/v2/42/episodes/1" {
					hit = true
					fmt.Fprint(w, `{"embed_url":"https://farsicdn.net/ep.720p.mp4","type":"mp4"}`)
					return
				}
				fmt.Fprint(w, `{"embed_url":"","type":""}`)
			}))
			defer srv.Close()

			strategy := NewNumberedMirrorAPI(fetch.New(srv.Client(), 256*1024, time.Second), mirrorValidator(), 2, 2*time.Second)
			page := &source.Page{URL: srv.URL + "/episode/x/", Type: source.PageEpisode}

			videos, err := strategy.Extract(context.Background(), page, docOf(`<form id="watch-42"></form>`))

			So(err, ShouldBeNil)
			So(hit, ShouldBeTrue)
			So(videos, ShouldHaveLength, 1)
			So(videos[0].Mirror, ShouldEqual, 1)
		})

		Convey("No post id anywhere yields nothing without touching the network", func() {
			strategy := NewNumberedMirrorAPI(fetch.New(http.DefaultClient, 256*1024, time.Second), mirrorValidator(), 3, time.Second)
			page := &source.Page{URL: "https://farsiplex.com/movie/x/", Type: source.PageMovie}

			videos, err := strategy.Extract(context.Background(), page, docOf("<p></p>"))

			So(err, ShouldBeNil)
			So(videos, ShouldBeNil)
		})

		Convey("All mirrors empty is a clean negative", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"embed_url":"","type":""}`)
			}))
			defer srv.Close()

			strategy := NewNumberedMirrorAPI(fetch.New(srv.Client(), 256*1024, time.Second), mirrorValidator(), 3, time.Second)
			page := &source.Page{URL: srv.URL + "/movie/x/", Type: source.PageMovie, InternalID: mo.Some(9)}

			videos, err := strategy.Extract(context.Background(), page, docOf("<p></p>"))

			So(err, ShouldBeNil)
			So(videos, ShouldBeNil)
		})

		Convey("A fast mirror on an untrusted host cannot win the race", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/wp-json/dooplayer/v2/13881/movie/1":
					fmt.Fprint(w, `{"embed_url":"https://evil.example/v.mp4","type":"mp4"}`)
				case "/wp-json/dooplayer/v2/13881/movie/2":
					time.Sleep(150 * time.Millisecond)
					fmt.Fprint(w, `{"embed_url":"https://farsicdn.net/beretta.720p.mp4","type":"mp4"}`)
				default:
					fmt.Fprint(w, `{"embed_url":"","type":""}`)
				}
			}))
			defer srv.Close()

			strategy := NewNumberedMirrorAPI(fetch.New(srv.Client(), 256*1024, time.Second), mirrorValidator(), 2, 2*time.Second)
			page := &source.Page{URL: srv.URL + "/movie/beretta/", Type: source.PageMovie, InternalID: mo.Some(13881)}

			videos, err := strategy.Extract(context.Background(), page, docOf("<p></p>"))

			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 1)
			So(videos[0].URL, ShouldEqual, "https://farsicdn.net/beretta.720p.mp4")
			So(videos[0].Mirror, ShouldEqual, 2)
		})

		Convey("Every mirror untrusted is a clean negative", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"embed_url":"https://evil.example/v.mp4","type":"mp4"}`)
			}))
			defer srv.Close()

			strategy := NewNumberedMirrorAPI(fetch.New(srv.Client(), 256*1024, time.Second), mirrorValidator(), 3, time.Second)
			page := &source.Page{URL: srv.URL + "/movie/x/", Type: source.PageMovie, InternalID: mo.Some(9)}

			videos, err := strategy.Extract(context.Background(), page, docOf("<p></p>"))

			So(err, ShouldBeNil)
			So(videos, ShouldBeNil)
		})
	})
}
