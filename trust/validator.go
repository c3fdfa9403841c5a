// Package trust implements the trusted-domain and HTTPS policy every URL must
// pass before the engine fetches it or hands it to a caller.
package trust

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/farsistream-cli/farsistream/key"
	"github.com/farsistream-cli/farsistream/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// ErrRejected is the sentinel wrapped by every policy rejection.
var ErrRejected = errors.New("rejected by trust policy")

// Validator checks URLs against a fixed trusted-domain set. It is pure: the
// same input always yields the same verdict, and rejections only log.
type Validator struct {
	domains         []string
	allowSubdomains bool
}

// NewValidator builds a validator for the given domain set. Domains are
// compared case-insensitively; ports are ignored during matching.
func NewValidator(domains []string, allowSubdomains bool) *Validator {
	return &Validator{
		domains: lo.Map(domains, func(d string, _ int) string {
			return strings.ToLower(strings.TrimSpace(d))
		}),
		allowSubdomains: allowSubdomains,
	}
}

// FromConfig builds a validator from the global trust configuration.
func FromConfig() *Validator {
	return NewValidator(
		viper.GetStringSlice(key.TrustDomains),
		viper.GetBool(key.TrustAllowSubdomains),
	)
}

// Validate normalizes a raw URL against the policy.
//
// Verdicts:
//   - non-http(s) schemes are rejected;
//   - http on a trusted host is rewritten to https and accepted;
//   - https is accepted only on a trusted host;
//   - everything else is rejected.
//
// The returned URL is always https on success.
func (v *Validator) Validate(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", v.reject(raw, "unparseable url")
	}

	switch u.Scheme {
	case "http", "https":
	default:
		return "", v.reject(raw, fmt.Sprintf("scheme %q not allowed", u.Scheme))
	}

	if u.Host == "" {
		return "", v.reject(raw, "missing host")
	}

	if !v.trusted(u.Hostname()) {
		return "", v.reject(raw, fmt.Sprintf("host %q not trusted", u.Hostname()))
	}

	u.Scheme = "https"
	return u.String(), nil
}

// NormalizeKey canonicalizes a page URL for use as a cache key, so scheme,
// host casing and trailing-slash variants of the same logical page collide.
// The key is only produced for URLs that pass Validate.
func (v *Validator) NormalizeKey(raw string) (string, error) {
	validated, err := v.Validate(raw)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(validated)
	if err != nil {
		return "", v.reject(raw, "unparseable url")
	}

	u.Host = strings.ToLower(u.Host)
	u.Host = strings.TrimSuffix(u.Host, ":443")
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.Fragment = ""

	return u.String(), nil
}

// trusted reports whether a hostname matches the domain set.
func (v *Validator) trusted(hostname string) bool {
	hostname = strings.ToLower(hostname)

	for _, domain := range v.domains {
		if domain == "" {
			continue
		}
		if hostname == domain {
			return true
		}
		if v.allowSubdomains && strings.HasSuffix(hostname, "."+domain) {
			return true
		}
	}
	return false
}

// Domains returns the configured domain set, mostly for diagnostics output.
func (v *Validator) Domains() []string {
	return append([]string(nil), v.domains...)
}

func (v *Validator) reject(raw, why string) error {
	log.Debugf("trust: rejected %q: %s", raw, why)
	return fmt.Errorf("%w: %s", ErrRejected, why)
}
