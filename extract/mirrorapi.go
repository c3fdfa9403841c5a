package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/farsistream-cli/farsistream/fetch"
	"github.com/farsistream-cli/farsistream/key"
	"github.com/farsistream-cli/farsistream/log"
	"github.com/farsistream-cli/farsistream/mirror"
	"github.com/farsistream-cli/farsistream/source"
	"github.com/farsistream-cli/farsistream/trust"
	"github.com/spf13/viper"
)

// NumberedMirrorAPI hits the theme's JSON player endpoints, one per mirror
// slot, and races them for the first usable stream. The endpoints live at
// /wp-json/dooplayer/v2/{post}/{type}/{n} and answer {"embed_url": ..., "type": ...}.
type NumberedMirrorAPI struct {
	fetcher   *fetch.Fetcher
	validator *trust.Validator
	max       int
	overall   time.Duration
}

// NewNumberedMirrorAPI builds the strategy with explicit bounds.
func NewNumberedMirrorAPI(fetcher *fetch.Fetcher, validator *trust.Validator, maxMirrors int, overall time.Duration) *NumberedMirrorAPI {
	return &NumberedMirrorAPI{fetcher: fetcher, validator: validator, max: maxMirrors, overall: overall}
}

// NewNumberedMirrorAPIFromConfig builds the strategy from global configuration.
func NewNumberedMirrorAPIFromConfig(validator *trust.Validator) *NumberedMirrorAPI {
	return NewNumberedMirrorAPI(
		fetch.MirrorFetcher(),
		validator,
		viper.GetInt(key.MirrorsMax),
		time.Duration(viper.GetInt(key.MirrorsRaceTimeoutSeconds))*time.Second,
	)
}

func (m *NumberedMirrorAPI) String() string {
	return "numbered-mirror-api"
}

func (m *NumberedMirrorAPI) Extract(ctx context.Context, page *source.Page, doc *goquery.Document) ([]*source.Video, error) {
	postID, ok := page.InternalID.Get()
	if !ok {
		postID, ok = discoverPostID(doc)
		if !ok {
			log.Debugf("extract: no post id on %s, skipping mirror api", page.URL)
			return nil, nil
		}
	}

	pageURL, err := url.Parse(page.URL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	probes := make([]mirror.Probe, 0, m.max)
	for n := 1; n <= m.max; n++ {
		probes = append(probes, mirror.Probe{
			Index: n,
			URL: fmt.Sprintf("%s://%s/wp-json/dooplayer/v2/%d/%s/%d",
				pageURL.Scheme, pageURL.Host, postID, page.APIType(), n),
		})
	}

	return mirror.Race(ctx, probes, m.probe, m.overall)
}

// mirrorPayload is the wire shape of a dooplayer endpoint response.
type mirrorPayload struct {
	EmbedURL string `json:"embed_url"`
	Type     string `json:"type"`
}

// probe fetches one mirror endpoint and converts its payload into candidates.
// A mirror answering without a usable embed URL is an empty slot, not an
// error. The stream URL is validated right here, before the race can see it:
// a compromised fast mirror handing out an untrusted URL must count as empty
// so the race keeps waiting for a trusted slot instead of adopting the
// poisoned winner and cancelling the good one.
func (m *NumberedMirrorAPI) probe(ctx context.Context, p mirror.Probe) ([]*source.Video, error) {
	body, err := m.fetcher.Fetch(ctx, p.URL)
	if err != nil {
		return nil, err
	}

	var payload mirrorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode mirror payload: %w", err)
	}

	if payload.EmbedURL == "" {
		return nil, nil
	}

	streamURL := UnwrapEmbed(payload.EmbedURL)
	validated, err := m.validator.Validate(streamURL)
	if err != nil {
		log.Warnf("extract: mirror %d handed out untrusted stream %s, treating slot as empty: %v", p.Index, streamURL, err)
		return nil, nil
	}

	video := candidate(validated)
	video.Mirror = p.Index
	return []*source.Video{video}, nil
}

// UnwrapEmbed peels the jwplayer wrapper off an embed URL. The theme hands
// out player pages shaped like /jwplayer/?source=ENCODED_STREAM; the decoded
// source parameter is the actual stream. Embeds without the wrapper pass
// through untouched.
func UnwrapEmbed(embedURL string) string {
	u, err := url.Parse(embedURL)
	if err != nil {
		return embedURL
	}

	encoded := u.Query().Get("source")
	if encoded == "" {
		return embedURL
	}

	decoded, err := url.QueryUnescape(encoded)
	if err != nil || !strings.HasPrefix(decoded, "http") {
		return embedURL
	}
	return decoded
}

// discoverPostID digs the WordPress post ID out of the page markup. The
// theme leaks it in three places, checked from most to least reliable:
// the watch-{id} form, any data-post attribute, and the postid-{id} body class.
func discoverPostID(doc *goquery.Document) (int, bool) {
	if formID := doc.Find(`form[id^="watch-"]`).First().AttrOr("id", ""); formID != "" {
		if id, err := strconv.Atoi(strings.TrimPrefix(formID, "watch-")); err == nil {
			return id, true
		}
	}

	if raw := doc.Find("[data-post]").First().AttrOr("data-post", ""); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			return id, true
		}
	}

	for _, class := range strings.Fields(doc.Find("body").AttrOr("class", "")) {
		if rest, found := strings.CutPrefix(class, "postid-"); found {
			if id, err := strconv.Atoi(rest); err == nil {
				return id, true
			}
		}
	}

	return 0, false
}
