package mock

import (
	"context"

	"github.com/fwojciec/pkgcat"
)

var _ pkgcat.Prober = (*Prober)(nil)

// Prober is a mock implementation of pkgcat.Prober.
type Prober struct {
	ProbeFn func(ctx context.Context, url string) (*pkgcat.ProbeResult, error)
}

func (p *Prober) Probe(ctx context.Context, url string) (*pkgcat.ProbeResult, error) {
	return p.ProbeFn(ctx, url)
}

var _ pkgcat.HostGate = (*HostGate)(nil)

// HostGate is a mock implementation of pkgcat.HostGate.
type HostGate struct {
	AcquireFn func(ctx context.Context, host string) (func(), error)
}

func (g *HostGate) Acquire(ctx context.Context, host string) (func(), error) {
	return g.AcquireFn(ctx, host)
}
