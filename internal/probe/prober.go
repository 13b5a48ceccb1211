package probe

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/LoaderSpot/LoaderSpot/internal/common/httpx"
	"github.com/LoaderSpot/LoaderSpot/internal/common/logger"
)

// revisionRe extracts the trailing installer revision number.
var revisionRe = regexp.MustCompile(`-(\d+)\.(exe|tbz)$`)

// Hit is one installer URL that answered the HEAD probe.
type Hit struct {
	URL      string
	Platform Platform
	Revision int
}

// SweepConfig bounds one search run.
type SweepConfig struct {
	// Start and End bound the revision numbers of the first pass.
	Start int
	End   int
	// LadderPasses is how many extra range extensions are attempted
	// when some platforms are still missing after the first pass.
	LadderPasses int
	// LadderStep is the size of each range extension.
	LadderStep int
}

// DefaultSweepConfig mirrors the ranges the CI scripts probe.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Start:        0,
		End:          1000,
		LadderPasses: 10,
		LadderStep:   1000,
	}
}

// Prober sweeps CDN URLs with bounded concurrency. A URL that does not
// answer 200 is simply not a hit; transport errors are treated the same
// way since the sweep deliberately asks for thousands of nonexistent
// objects.
type Prober struct {
	client      *httpx.Client
	connections int
	limiter     *rate.Limiter
}

// NewProber creates a prober. connections bounds in-flight requests;
// rps > 0 additionally rate-limits request starts.
func NewProber(client *httpx.Client, connections int, rps float64) *Prober {
	if client == nil {
		client = httpx.New()
	}
	if connections <= 0 {
		connections = 100
	}
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), connections)
	}
	return &Prober{client: client, connections: connections, limiter: limiter}
}

// Sweep probes revisions start..end inclusive for every platform and
// returns the hits. Only context cancellation aborts the sweep.
func (pr *Prober) Sweep(ctx context.Context, ver string, platforms []Platform, start, end int) ([]Hit, error) {
	var mu sync.Mutex
	var hits []Hit

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(pr.connections)

	for _, p := range platforms {
		for n := start; n <= end; n++ {
			p, n := p, n
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				if pr.limiter != nil {
					if err := pr.limiter.Wait(ctx); err != nil {
						return err
					}
				}
				url := InstallerURL(p, ver, n)
				resp, err := pr.client.Head(ctx, url)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					return nil
				}
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					mu.Lock()
					hits = append(hits, Hit{URL: url, Platform: p, Revision: n})
					mu.Unlock()
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hits, nil
}

// Search runs the laddered sweep: a first pass over the configured
// range, then bounded extensions for platforms still missing.
func (pr *Prober) Search(ctx context.Context, ver string, platforms []Platform, cfg SweepConfig) (map[Platform]Hit, error) {
	platforms = Filter(ver, platforms)

	start, end := cfg.Start, cfg.End
	hits, err := pr.Sweep(ctx, ver, platforms, start, end)
	if err != nil {
		return nil, err
	}

	latest := Latest(hits)
	for pass := 0; pass < cfg.LadderPasses && len(latest) < len(platforms); pass++ {
		var missing []Platform
		for _, p := range platforms {
			if _, ok := latest[p]; !ok {
				missing = append(missing, p)
			}
		}
		start = end + 1
		end += cfg.LadderStep
		logger.Debug("extending search to %d-%d for %v", start, end, missing)

		more, err := pr.Sweep(ctx, ver, missing, start, end)
		if err != nil {
			return nil, err
		}
		hits = append(hits, more...)
		latest = Latest(hits)
	}

	return latest, nil
}

// Latest keeps the highest-revision hit per platform. The CDN serves
// several revisions of the same release; only the newest matters.
func Latest(hits []Hit) map[Platform]Hit {
	latest := make(map[Platform]Hit)
	for _, h := range hits {
		if cur, ok := latest[h.Platform]; !ok || h.Revision > cur.Revision {
			latest[h.Platform] = h
		}
	}
	return latest
}

// Revision parses the revision number out of an installer URL.
func Revision(url string) (int, bool) {
	m := revisionRe.FindStringSubmatch(url)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Payload flattens the per-platform results into the map shape the
// webhook expects: platform key to URL, plus version and source. An
// empty result still reports version and source with an explicit
// unknown marker.
func Payload(latest map[Platform]Hit, ver, source string) map[string]string {
	out := make(map[string]string, len(latest)+2)
	for p, h := range latest {
		out[p.Key()] = h.URL
	}
	if len(latest) == 0 {
		out["unknown"] = "unknown"
	}
	out["version"] = ver
	out["source"] = source
	return out
}
