// Package network provides pre-configured, optimized HTTP clients for concurrent provider communication.
package network

import (
	"net/http"
	"time"

	"github.com/farsistream-cli/farsistream/key"
	"github.com/spf13/viper"
)

// Client is the singleton HTTP client shared across the application for efficient resource utilization.
// It is configured with increased concurrency limits and reasonable timeouts tailored for scraping workflows.
// Per-request deadlines are supplied via context by the callers; the client itself carries no global timeout
// so that a mirror race can cancel individual probes independently.
var Client = &http.Client{
	Transport: newTransport(),
}

// newTransport initializes a tuned http.Transport with optimized pool and timeout parameters.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}

// Pick returns the client matching the global TLS spoofing configuration.
// The spoofed client impersonates a Chrome handshake and is only needed for
// hosts behind anti-bot challenges; the plain client is faster to connect.
func Pick() *http.Client {
	if viper.GetBool(key.FetchSpoofTLS) {
		return SpoofClient()
	}
	return Client
}
