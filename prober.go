package pkgcat

import (
	"context"
	"time"
)

// ProbeResult is what a network existence check reports about a URL.
// Response bodies are never read.
type ProbeResult struct {
	URL        string
	StatusCode int
	// FinalURL is the location after following redirects. It equals URL
	// when no redirect happened.
	FinalURL string
	Duration time.Duration
}

// Redirected reports whether the probe ended somewhere other than URL.
func (r *ProbeResult) Redirected() bool {
	return r.FinalURL != "" && r.FinalURL != r.URL
}

// Prober checks that a URL exists without downloading its content.
type Prober interface {
	// Probe issues a HEAD-equivalent request and returns the final status.
	// Transport failures (timeout, reset, DNS) are returned as errors;
	// HTTP error statuses are not errors.
	Probe(ctx context.Context, url string) (*ProbeResult, error)
}

// HostGate throttles probes per host.
type HostGate interface {
	// Acquire blocks until a probe to host may start. At most one probe per
	// host is in flight; the returned release func must be called when the
	// probe settles. Returns an error if the context is canceled.
	Acquire(ctx context.Context, host string) (release func(), err error)
}
