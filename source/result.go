// Package source defines the domain models for content pages and resolved video streams.
package source

import (
	"encoding/json"

	"github.com/samber/lo"
)

// Kind discriminates the variants of a resolution Result.
type Kind string

const (
	// KindSuccess carries a non-empty ordered list of validated videos.
	KindSuccess Kind = "success"
	// KindNoSources is a legitimate negative: the page holds no streams. Not an error.
	KindNoSources Kind = "no_sources_found"
	// KindNetworkError is a transport failure (timeout/DNS/refused). Retryable.
	KindNetworkError Kind = "network_error"
	// KindParseError means the fetch succeeded but extraction faulted unexpectedly.
	// Retryable; usually signals an upstream markup change worth logging.
	KindParseError Kind = "parse_error"
	// KindSecurityRejected means the input or a candidate failed the trust policy. Terminal.
	KindSecurityRejected Kind = "security_rejected"
)

// Result is the tagged union produced by exactly one resolution attempt.
// Negative outcomes are values, not errors: callers switch on Kind to pick
// the user-visible behavior, and only programming errors propagate as panics.
type Result struct {
	kind    Kind
	sources []*Video
	reason  string
	cause   error
}

// Success builds the positive variant. The source list must be non-empty and
// already validated; the engine enforces both before calling this.
func Success(sources []*Video) Result {
	return Result{kind: KindSuccess, sources: sources}
}

// NoSources builds the legitimate-negative variant.
func NoSources(reason string) Result {
	return Result{kind: KindNoSources, reason: reason}
}

// NetworkError builds the transport-failure variant.
func NetworkError(cause error) Result {
	return Result{kind: KindNetworkError, cause: cause}
}

// ParseError builds the extraction-fault variant.
func ParseError(cause error) Result {
	return Result{kind: KindParseError, cause: cause}
}

// SecurityRejected builds the trust-policy-failure variant.
func SecurityRejected(reason string) Result {
	return Result{kind: KindSecurityRejected, reason: reason}
}

// Kind returns the variant discriminator.
func (r Result) Kind() Kind {
	return r.kind
}

// IsSuccess reports whether the result carries sources.
func (r Result) IsSuccess() bool {
	return r.kind == KindSuccess
}

// Retryable reports whether a caller may reasonably retry the same request soon.
func (r Result) Retryable() bool {
	return r.kind == KindNetworkError || r.kind == KindParseError
}

// Sources returns an independent copy of the resolved videos, preserving order.
func (r Result) Sources() []*Video {
	return lo.Map(r.sources, func(v *Video, _ int) *Video {
		return v.Clone()
	})
}

// Reason returns the human-readable reason for NoSources/SecurityRejected variants.
func (r Result) Reason() string {
	return r.reason
}

// Err returns the underlying cause for NetworkError/ParseError variants, nil otherwise.
func (r Result) Err() error {
	return r.cause
}

// String summarizes the result for logs and error messages.
func (r Result) String() string {
	switch r.kind {
	case KindSuccess:
		return string(r.kind)
	case KindNetworkError, KindParseError:
		if r.cause != nil {
			return string(r.kind) + ": " + r.cause.Error()
		}
		return string(r.kind)
	default:
		if r.reason != "" {
			return string(r.kind) + ": " + r.reason
		}
		return string(r.kind)
	}
}

// resultJSON is the wire shape for scriptable output.
type resultJSON struct {
	Kind    Kind     `json:"kind"`
	Sources []*Video `json:"sources,omitempty"`
	Reason  string   `json:"reason,omitempty"`
	Cause   string   `json:"cause,omitempty"`
}

// MarshalJSON flattens the union for the scriptable CLI mode.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Kind: r.kind, Sources: r.sources, Reason: r.reason}
	if r.cause != nil {
		out.Cause = r.cause.Error()
	}
	return json.Marshal(out)
}
