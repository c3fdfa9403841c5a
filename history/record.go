package history

import (
	"fmt"
	"time"

	"github.com/farsistream-cli/farsistream/source"
)

// Record represents one successful resolution preserved in the user's history.
type Record struct {
	PageURL     string    `json:"page_url"`
	PageType    string    `json:"page_type"`
	BestQuality string    `json:"best_quality"`
	SourceCount int       `json:"source_count"`
	ResolvedAt  time.Time `json:"resolved_at"`
}

func (r *Record) encode() string {
	return r.PageURL
}

func (r *Record) String() string {
	return fmt.Sprintf("%s : %s (%d sources)", r.PageURL, r.BestQuality, r.SourceCount)
}

func newRecord(page *source.Page, sources []*source.Video) *Record {
	best := ""
	if len(sources) > 0 {
		best = sources[0].Quality
	}

	return &Record{
		PageURL:     page.URL,
		PageType:    string(page.Type),
		BestQuality: best,
		SourceCount: len(sources),
		ResolvedAt:  time.Now(),
	}
}
