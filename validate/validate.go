// Package validate probes catalog URLs concurrently and classifies their
// reachability.
//
// Probes share one deadline for the whole phase. Entries whose probe has
// not settled when the deadline passes are classified AMBIGUOUS rather
// than failing the run.
package validate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/pkgcat"
	"github.com/fwojciec/pkgcat/normalize"
	"golang.org/x/sync/errgroup"
)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// Validator probes entry URLs with bounded concurrency.
type Validator struct {
	Prober pkgcat.Prober
	Gate   pkgcat.HostGate

	// Concurrency bounds the number of entries probed at once.
	Concurrency int

	// RetryDelays holds the wait before each retry of a transient failure.
	// Its length is the retry budget.
	RetryDelays []time.Duration

	// Deadline bounds the whole validation phase. Zero means no deadline.
	Deadline time.Duration

	// ManifestPath is appended to reachable repository URLs; a successful
	// probe adds ManifestTag to the entry.
	ManifestPath string
	ManifestTag  string

	// ProbeSecondary enables a single-attempt check of secondary URLs.
	ProbeSecondary bool

	Logf LogFunc
}

// NewValidator creates a Validator from configuration.
func NewValidator(prober pkgcat.Prober, cfg pkgcat.Config) *Validator {
	return &Validator{
		Prober:         prober,
		Gate:           NewHostGate(cfg.HostRPS),
		Concurrency:    cfg.Concurrency,
		RetryDelays:    cfg.RetryDelays(),
		Deadline:       cfg.Deadline,
		ManifestPath:   cfg.ManifestPath,
		ManifestTag:    cfg.ManifestTagOrDefault(),
		ProbeSecondary: cfg.ProbeSecondary,
	}
}

// Outcome is the classification of one entry.
type Outcome struct {
	ID          string
	State       pkgcat.ValidationState
	RedirectURL string
	Attempts    int
	Tags        []string
	Defects     []pkgcat.Defect
}

// Validate probes every entry and returns one outcome per entry, aligned
// with entries by index. Entries are not modified; use Apply once every
// concurrent stage has finished.
//
// Returns an error only if ctx itself is canceled. Expiry of the phase
// deadline classifies unsettled entries as AMBIGUOUS instead.
func (v *Validator) Validate(ctx context.Context, entries []*pkgcat.Entry) ([]Outcome, error) {
	phaseCtx := ctx
	if v.Deadline > 0 {
		var cancel context.CancelFunc
		phaseCtx, cancel = context.WithTimeout(ctx, v.Deadline)
		defer cancel()
	}

	concurrency := v.Concurrency
	if concurrency <= 0 {
		concurrency = pkgcat.DefaultConcurrency
	}

	outcomes := make([]Outcome, len(entries))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, e := range entries {
		g.Go(func() error {
			outcomes[i] = v.validateEntry(phaseCtx, e)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (v *Validator) validateEntry(ctx context.Context, e *pkgcat.Entry) Outcome {
	out := Outcome{ID: e.ID}

	c := v.check(ctx, e.PrimaryURL, len(v.RetryDelays))
	out.State = c.state
	out.Attempts = c.attempts

	switch c.state {
	case pkgcat.StateRedirected:
		out.RedirectURL = c.finalURL
		out.Defects = append(out.Defects, v.defect(e, pkgcat.DefectRedirected, fmt.Sprintf("%s -> %s", e.PrimaryURL, c.finalURL)))
	case pkgcat.StateUnreachable:
		out.Defects = append(out.Defects, v.defect(e, pkgcat.DefectUnreachable, c.detail))
	case pkgcat.StateAmbiguous:
		out.Defects = append(out.Defects, v.defect(e, pkgcat.DefectAmbiguous, c.detail))
	}

	if c.state == pkgcat.StateReachable || c.state == pkgcat.StateRedirected {
		if v.hasManifest(ctx, e, c.finalURL) {
			out.Tags = append(out.Tags, v.ManifestTag)
		}
	}

	if v.ProbeSecondary {
		for _, u := range e.SecondaryURLs {
			if ctx.Err() != nil {
				break
			}
			sc := v.check(ctx, u, 0)
			if sc.state == pkgcat.StateUnreachable {
				out.Defects = append(out.Defects, v.defect(e, pkgcat.DefectBrokenSecondaryLink, sc.detail))
			}
		}
	}

	return out
}

func (v *Validator) defect(e *pkgcat.Entry, kind pkgcat.DefectKind, detail string) pkgcat.Defect {
	return pkgcat.Defect{
		Stage:  pkgcat.StageValidate,
		Ref:    e.ID,
		Kind:   kind,
		Detail: detail,
	}
}

// checkResult is the settled state of one URL.
type checkResult struct {
	state    pkgcat.ValidationState
	finalURL string
	attempts int
	detail   string
}

// check probes rawURL, retrying transient failures up to retries times.
// The host gate is held only while a probe is in flight, not during
// backoff.
func (v *Validator) check(ctx context.Context, rawURL string, retries int) checkResult {
	host := hostOf(rawURL)
	maxAttempts := retries + 1

	var sawStatus, sawTransport bool
	var lastFailure string
	for attempt := 0; attempt < maxAttempts; attempt++ {
		release, err := v.Gate.Acquire(ctx, host)
		if err != nil {
			return unsettled(rawURL, attempt, err)
		}
		res, err := v.Prober.Probe(ctx, rawURL)
		release()

		if ctx.Err() != nil {
			return unsettled(rawURL, attempt+1, ctx.Err())
		}

		if err == nil {
			switch {
			case res.StatusCode >= 200 && res.StatusCode < 300:
				if res.Redirected() {
					return checkResult{state: pkgcat.StateRedirected, finalURL: res.FinalURL, attempts: attempt + 1}
				}
				return checkResult{state: pkgcat.StateReachable, finalURL: rawURL, attempts: attempt + 1}
			case res.StatusCode >= 300 && res.StatusCode < 400:
				final := res.FinalURL
				if final == "" {
					final = rawURL
				}
				return checkResult{state: pkgcat.StateRedirected, finalURL: final, attempts: attempt + 1}
			case !transientStatus(res.StatusCode):
				return checkResult{
					state:    pkgcat.StateUnreachable,
					attempts: attempt + 1,
					detail:   fmt.Sprintf("%s: HTTP %d", rawURL, res.StatusCode),
				}
			}
			sawStatus = true
			lastFailure = fmt.Sprintf("HTTP %d", res.StatusCode)
		} else {
			sawTransport = true
			lastFailure = err.Error()
		}

		if attempt >= maxAttempts-1 {
			break
		}

		if v.Logf != nil {
			v.Logf("  retry %s (attempt %d): %s", rawURL, attempt+2, lastFailure)
		}

		select {
		case <-ctx.Done():
			return unsettled(rawURL, attempt+1, ctx.Err())
		case <-time.After(v.RetryDelays[attempt]):
		}
	}

	if sawStatus && sawTransport {
		return checkResult{
			state:    pkgcat.StateAmbiguous,
			attempts: maxAttempts,
			detail:   fmt.Sprintf("%s: intermittent failures over %d attempts, last: %s", rawURL, maxAttempts, lastFailure),
		}
	}
	return checkResult{
		state:    pkgcat.StateUnreachable,
		attempts: maxAttempts,
		detail:   fmt.Sprintf("%s: %d attempts failed, last: %s", rawURL, maxAttempts, lastFailure),
	}
}

func unsettled(rawURL string, attempts int, err error) checkResult {
	reason := "canceled"
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "deadline exceeded"
	}
	return checkResult{
		state:    pkgcat.StateAmbiguous,
		attempts: attempts,
		detail:   fmt.Sprintf("%s: %s before probe settled", rawURL, reason),
	}
}

// transientStatus reports whether an HTTP status is worth retrying.
func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// hasManifest reports whether a repository URL serves the package manifest.
// A single attempt is made; failures only mean no tag.
func (v *Validator) hasManifest(ctx context.Context, e *pkgcat.Entry, base string) bool {
	if v.ManifestPath == "" || v.ManifestTag == "" {
		return false
	}
	_, owner, repo := normalize.Split(e.Key)
	if owner == "" || owner == repo {
		return false
	}
	if base == "" {
		base = e.PrimaryURL
	}
	manifest := strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(v.ManifestPath, "/")
	c := v.check(ctx, manifest, 0)
	return c.state == pkgcat.StateReachable
}

// Apply copies outcomes onto entries and returns their defects in entry
// order. Outcomes must be aligned with entries as returned by Validate.
func Apply(entries []*pkgcat.Entry, outcomes []Outcome) ([]pkgcat.Defect, error) {
	if len(outcomes) != len(entries) {
		return nil, pkgcat.Errorf(pkgcat.EINTERNAL, "%d outcomes for %d entries", len(outcomes), len(entries))
	}
	var defects []pkgcat.Defect
	for i, e := range entries {
		o := outcomes[i]
		if o.ID != e.ID {
			return nil, pkgcat.Errorf(pkgcat.EINTERNAL, "outcome %s does not match entry %s", o.ID, e.ID)
		}
		e.State = o.State
		e.RedirectURL = o.RedirectURL
		for _, tag := range o.Tags {
			e.AddTag(tag)
		}
		defects = append(defects, o.Defects...)
	}
	return defects, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return strings.ToLower(u.Hostname())
}
