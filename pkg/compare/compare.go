// Package compare runs a query against both providers and collects their
// outcomes independently, so one provider's failure never hides the other's
// results.
package compare

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/newscompare/newscompare/pkg/domain"
	"github.com/newscompare/newscompare/pkg/provider"
)

// Comparator dispatches one request to both providers
type Comparator struct {
	stories  provider.Fetcher
	research provider.Fetcher
}

// New creates a comparator over the two provider clients
func New(stories, research provider.Fetcher) *Comparator {
	return &Comparator{stories: stories, research: research}
}

// Run fetches from both providers concurrently and returns one result per
// provider. Errors are captured in the results, never propagated; each
// result carries the elapsed fetch duration.
func (c *Comparator) Run(ctx context.Context, req domain.QueryRequest) (stories, research domain.ProviderResult) {
	if req.LookbackDays == 0 {
		req.LookbackDays = domain.DefaultLookbackDays
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stories = fetchTimed(ctx, c.stories, req)
		return nil
	})
	g.Go(func() error {
		research = fetchTimed(ctx, c.research, req)
		return nil
	})
	_ = g.Wait() // goroutines never return errors, failures live in the results

	return stories, research
}

// fetchTimed runs a single provider fetch, timing it and folding any error
// into the result
func fetchTimed(ctx context.Context, f provider.Fetcher, req domain.QueryRequest) domain.ProviderResult {
	start := time.Now()
	items, err := f.Fetch(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		log.Printf("[WARN] %s fetch failed after %v: %v", f.Name(), elapsed.Round(time.Millisecond), err)
		return domain.ProviderResult{Provider: f.Name(), Elapsed: elapsed, Err: err}
	}

	log.Printf("[INFO] %s returned %d items in %v", f.Name(), len(items), elapsed.Round(time.Millisecond))
	return domain.ProviderResult{Provider: f.Name(), Items: items, Count: len(items), Elapsed: elapsed}
}
