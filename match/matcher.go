// Package match runs extraction patterns over attacker-influenced text with
// two independent bounds: a hard input-size cap and a wall-clock deadline.
// The cap bounds typical-case cost; the deadline bounds worst-case cost for
// scans whose complexity turns out non-linear on unexpected input. Exceeding
// the deadline is indistinguishable from "no match" by design.
package match

import (
	"regexp"
	"time"

	"github.com/farsistream-cli/farsistream/key"
	"github.com/farsistream-cli/farsistream/log"
	"github.com/spf13/viper"
)

// Matcher applies bounded pattern matching.
type Matcher struct {
	maxInput int
	timeout  time.Duration
}

// New builds a matcher with explicit bounds.
func New(maxInput int, timeout time.Duration) *Matcher {
	return &Matcher{maxInput: maxInput, timeout: timeout}
}

// Default builds the matcher from global configuration.
func Default() *Matcher {
	return New(
		viper.GetInt(key.MatchMaxInputBytes),
		time.Duration(viper.GetInt(key.MatchTimeoutMs))*time.Millisecond,
	)
}

// FindAll returns every match of re in input, bounded by the matcher's cap
// and deadline. A deadline hit returns nil exactly like a clean no-match.
func (m *Matcher) FindAll(re *regexp.Regexp, input string) []string {
	var out []string
	ok := m.run(re, input, func(capped string) {
		out = re.FindAllString(capped, -1)
	})
	if !ok {
		return nil
	}
	return out
}

// FindAllSubmatch returns every match with capture groups, under the same bounds.
func (m *Matcher) FindAllSubmatch(re *regexp.Regexp, input string) [][]string {
	var out [][]string
	ok := m.run(re, input, func(capped string) {
		out = re.FindAllStringSubmatch(capped, -1)
	})
	if !ok {
		return nil
	}
	return out
}

// run truncates input, executes fn in a child goroutine and waits for either
// completion or the deadline. The stdlib regexp engine exposes no
// cancellation hook, so an abandoned child cannot be interrupted mid-scan;
// the input cap is what bounds how long it can keep running, and its late
// result is discarded either way.
func (m *Matcher) run(re *regexp.Regexp, input string, fn func(string)) bool {
	if m.maxInput > 0 && len(input) > m.maxInput {
		input = input[:m.maxInput]
	}

	done := make(chan struct{}, 1)
	go func() {
		fn(input)
		done <- struct{}{}
	}()

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		log.Warnf("match: pattern %q exceeded %s deadline, treating as no match", re.String(), m.timeout)
		return false
	}
}
