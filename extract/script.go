package extract

import (
	"context"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/farsistream-cli/farsistream/key"
	"github.com/farsistream-cli/farsistream/log"
	"github.com/farsistream-cli/farsistream/match"
	"github.com/farsistream-cli/farsistream/source"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

var mediaURLPattern = regexp.MustCompile(`https?://[^\s"'<>\\]+\.(?:mp4|m3u8)(?:\?[^\s"'<>\\]*)?`)

// EmbeddedScript scans inline <script> blocks for literal stream URLs that
// player setup code tends to carry. Script content is fully attacker-shaped
// text, so every scan runs through the bounded matcher and oversized blocks
// are skipped outright.
type EmbeddedScript struct {
	matcher   *match.Matcher
	maxScript int
}

// NewEmbeddedScript builds the strategy with explicit bounds.
func NewEmbeddedScript(matcher *match.Matcher, maxScript int) *EmbeddedScript {
	return &EmbeddedScript{matcher: matcher, maxScript: maxScript}
}

// NewEmbeddedScriptFromConfig builds the strategy from global configuration.
func NewEmbeddedScriptFromConfig() *EmbeddedScript {
	return NewEmbeddedScript(match.Default(), viper.GetInt(key.MatchMaxScriptBytes))
}

func (e *EmbeddedScript) String() string {
	return "embedded-script"
}

func (e *EmbeddedScript) Extract(_ context.Context, page *source.Page, doc *goquery.Document) ([]*source.Video, error) {
	var urls []string

	doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		text := sel.Text()
		if e.maxScript > 0 && len(text) > e.maxScript {
			log.Debugf("extract: skipping %d byte script #%d on %s", len(text), i, page.URL)
			return
		}
		urls = append(urls, e.matcher.FindAll(mediaURLPattern, text)...)
	})

	return lo.Map(lo.Uniq(urls), func(u string, _ int) *source.Video {
		return candidate(u)
	}), nil
}
