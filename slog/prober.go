// Package slog provides logging decorators for pkgcat services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pkgcat"
)

// Ensure LoggingProber implements pkgcat.Prober.
var _ pkgcat.Prober = (*LoggingProber)(nil)

// LoggingProber wraps a Prober with debug logging.
type LoggingProber struct {
	next   pkgcat.Prober
	logger *slog.Logger
}

// NewLoggingProber creates a new LoggingProber.
func NewLoggingProber(next pkgcat.Prober, logger *slog.Logger) *LoggingProber {
	return &LoggingProber{next: next, logger: logger}
}

// Probe delegates to the wrapped prober and logs the outcome.
func (p *LoggingProber) Probe(ctx context.Context, url string) (res *pkgcat.ProbeResult, err error) {
	defer func(begin time.Time) {
		var status int
		var final string
		if res != nil {
			status = res.StatusCode
			final = res.FinalURL
		}
		p.logger.Debug("probe",
			"url", url,
			"status", status,
			"final", final,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Probe(ctx, url)
}
