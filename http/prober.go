// Package http provides an HTTP-based implementation of pkgcat.Prober.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fwojciec/pkgcat"
)

// DefaultProbeTimeout is the default timeout for a single probe.
const DefaultProbeTimeout = 10 * time.Second

// DefaultUserAgent identifies probes to hosting platforms.
const DefaultUserAgent = "pkgcat-linkcheck/1.0"

// Ensure Prober implements pkgcat.Prober at compile time.
var _ pkgcat.Prober = (*Prober)(nil)

// Prober checks URLs with HEAD requests, falling back to GET for servers
// that reject HEAD. Redirects are followed and response bodies are never
// read.
type Prober struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Prober.
type Option func(*Prober)

// WithTimeout sets the timeout for a single probe.
// Defaults to DefaultProbeTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		p.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(p *Prober) {
		p.userAgent = ua
	}
}

// NewProber creates a new HTTP-based Prober.
func NewProber(opts ...Option) *Prober {
	p := &Prober{
		timeout:   DefaultProbeTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.client = &http.Client{
		Timeout: p.timeout,
	}

	return p
}

// Probe reports the final status of url after following redirects.
func (p *Prober) Probe(ctx context.Context, url string) (*pkgcat.ProbeResult, error) {
	start := time.Now()

	resp, hopped, err := p.do(ctx, http.MethodHead, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented {
		resp, hopped, err = p.do(ctx, http.MethodGet, url)
		if err != nil {
			return nil, err
		}
	}

	// The client re-encodes URLs, so FinalURL only differs from url when a
	// redirect was actually followed.
	final := url
	if hopped && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}

	return &pkgcat.ProbeResult{
		URL:        url,
		StatusCode: resp.StatusCode,
		FinalURL:   final,
		Duration:   time.Since(start),
	}, nil
}

// do issues one request and closes the body without reading it. hopped
// reports whether the client followed at least one redirect.
func (p *Prober) do(ctx context.Context, method, url string) (resp *http.Response, hopped bool, err error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err = p.client.Do(req)
	if err != nil {
		return nil, false, err
	}
	_ = resp.Body.Close()
	return resp, resp.Request != nil && resp.Request != req, nil
}

// Close releases idle connections.
func (p *Prober) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
