// Package network provides pre-configured, optimized HTTP clients for concurrent provider communication.
//
// The spoofed client in this file leverages refraction-networking/utls to implement TLS fingerprint
// emulation, specifically mimicking Chrome's Client Hello signature. Some streaming CDNs sit behind
// anti-bot challenges (Cloudflare, DDoS-Guard) that reject the standard Go TLS handshake outright;
// emulating a browser fingerprint is the only way to fetch pages from them at all.
//
// Fingerprint Selection:
// uTLS HelloChrome_120 is used as it provides a modern, stable fingerprint
// that matches prevalent browser traffic.
//
// Protocol Negotiation (ALPN):
// The spoofed transport advertises both h2 and http/1.1 like a real Chrome
// client. HTTP/2 is attempted first; servers that only negotiate HTTP/1.1 are
// retried transparently on a forced-H1 transport.
package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

const dialTimeout = 30 * time.Second

// h2Transport is a shared HTTP/2 transport for servers that negotiate h2.
var (
	h2Transport     *http2.Transport
	h2TransportOnce sync.Once
)

func getH2Transport() *http2.Transport {
	h2TransportOnce.Do(func() {
		h2Transport = &http2.Transport{
			// Use custom DialTLSContext to provide utls connections
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialTLS(ctx, network, addr)
			},
		}
	})
	return h2Transport
}

// h1Transport is a shared HTTP/1.1 transport for servers that negotiate http/1.1.
var h1Transport = &http.Transport{
	DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialTLSH1(ctx, network, addr)
	},
}

// spoofTransport routes requests through the H2 uTLS transport and falls back
// to the forced-H1 transport when the server rejects the H2 attempt.
type spoofTransport struct{}

func (spoofTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		// Fingerprinting only applies to TLS; plain http goes through the shared pool.
		return Client.Transport.RoundTrip(req)
	}

	resp, err := getH2Transport().RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	retry := req.Clone(req.Context())
	resp, h1Err := h1Transport.RoundTrip(retry)
	if h1Err != nil {
		return nil, fmt.Errorf("spoofed request failed: h2: %v, h1: %w", err, h1Err)
	}
	return resp, nil
}

var spoofClient = &http.Client{Transport: spoofTransport{}}

// SpoofClient returns the shared HTTP client with Chrome TLS fingerprint spoofing.
func SpoofClient() *http.Client {
	return spoofClient
}

// dialTLS creates a TLS connection mimicking Chrome 120's fingerprint.
// Advertises both h2 and http/1.1 (natural Chrome behavior).
func dialTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}, utls.HelloChrome_120)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}

// dialTLSH1 creates a TLS connection forcing HTTP/1.1 only (for fallback).
func dialTLSH1(ctx context.Context, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
		NextProtos: []string{"http/1.1"},
	}, utls.HelloChrome_120)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
