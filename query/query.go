// Package query manages the persistence and retrieval of previously resolved
// page URLs, powering shell completion and interactive suggestions.
package query

import (
	"strings"

	"github.com/farsistream-cli/farsistream/filesystem"
	"github.com/farsistream-cli/farsistream/key"
	"github.com/farsistream-cli/farsistream/where"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

type urlRecord struct {
	Rank int    `json:"rank"`
	URL  string `json:"url"`
}

var cacher = gache.New[map[string]*urlRecord](
	&gache.Options{
		Path:       where.Queries(),
		FileSystem: &filesystem.GacheFs{},
	},
)

var suggestionCache = make(map[string][]*urlRecord)

// Remember records a resolved page URL or bumps its popularity rank.
func Remember(pageURL string, weight int) error {
	pageURL = sanitize(pageURL)
	cached, expired, err := cacher.Get()
	if expired || err != nil || cached == nil {
		cached = make(map[string]*urlRecord)
	}

	if record, ok := cached[pageURL]; ok {
		record.Rank += weight
	} else {
		cached[pageURL] = &urlRecord{Rank: weight, URL: pageURL}
	}

	return cacher.Set(cached)
}

// Suggest returns the most relevant previously resolved URL for a partial input.
func Suggest(partial string) mo.Option[string] {
	suggestions := SuggestMany(partial)
	if len(suggestions) == 0 {
		return mo.None[string]()
	}
	return mo.Some(suggestions[0])
}

// SuggestMany returns previously resolved URLs matching the partial input,
// sorted by popularity rank.
func SuggestMany(partial string) []string {
	if !viper.GetBool(key.SearchShowURLSuggestions) {
		return []string{}
	}

	partial = sanitize(partial)
	var records []*urlRecord

	if prev, ok := suggestionCache[partial]; ok {
		records = prev
	} else {
		cached, expired, err := cacher.Get()
		if err != nil || expired || cached == nil {
			return []string{}
		}

		for _, record := range cached {
			if fuzzy.Match(partial, record.URL) {
				records = append(records, record)
			}
		}

		slices.SortFunc(records, func(a, b *urlRecord) int {
			return b.Rank - a.Rank // Descending rank
		})

		suggestionCache[partial] = records
	}

	return lo.Map(records, func(r *urlRecord, _ int) string {
		return r.URL
	})
}

func sanitize(pageURL string) string {
	return strings.TrimSpace(pageURL)
}
