package validate

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/pkgcat"
	"golang.org/x/time/rate"
)

var _ pkgcat.HostGate = (*HostGate)(nil)

// HostGate serializes probes per host and spaces them with a token bucket.
// Probes to different hosts proceed independently.
type HostGate struct {
	mu    sync.Mutex
	hosts map[string]*hostSlot
	rps   float64
}

type hostSlot struct {
	busy    chan struct{}
	limiter *rate.Limiter
}

// NewHostGate creates a HostGate allowing rps probe starts per second per
// host with a burst of 1. A non-positive rps disables throttling but keeps
// per-host serialization.
func NewHostGate(rps float64) *HostGate {
	return &HostGate{
		hosts: make(map[string]*hostSlot),
		rps:   rps,
	}
}

// Acquire blocks until no other probe to host is in flight and the host's
// rate limit allows a new one.
func (g *HostGate) Acquire(ctx context.Context, host string) (func(), error) {
	slot := g.slot(strings.ToLower(host))

	select {
	case slot.busy <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := slot.limiter.Wait(ctx); err != nil {
		<-slot.busy
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-slot.busy })
	}, nil
}

func (g *HostGate) slot(host string) *hostSlot {
	g.mu.Lock()
	defer g.mu.Unlock()

	slot, ok := g.hosts[host]
	if !ok {
		limit := rate.Inf
		if g.rps > 0 {
			limit = rate.Limit(g.rps)
		}
		slot = &hostSlot{
			busy:    make(chan struct{}, 1),
			limiter: rate.NewLimiter(limit, 1),
		}
		g.hosts[host] = slot
	}
	return slot
}
