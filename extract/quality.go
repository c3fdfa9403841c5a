package extract

import (
	"net/url"
	"strings"
)

// DetectQuality derives a quality label from substrings of the stream URL,
// matching how the upstream sites name their files. "HD" is the catch-all
// for URLs that encode no resolution at all.
func DetectQuality(rawURL string) string {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.Contains(lower, "1080") || strings.Contains(lower, "fhd"):
		return "1080p"
	case strings.Contains(lower, "720") || strings.Contains(lower, "hd"):
		return "720p"
	case strings.Contains(lower, "480"):
		return "480p"
	case strings.Contains(lower, "360"):
		return "360p"
	default:
		return "HD"
	}
}

// DetectCDN labels the stream by its serving host. Known CDN families
// collapse to a short brand name; anything else keeps the bare host.
func DetectCDN(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case strings.Contains(host, "farsiland"):
		return "farsiland"
	case strings.Contains(host, "farsicdn"):
		return "farsicdn"
	default:
		return host
	}
}
