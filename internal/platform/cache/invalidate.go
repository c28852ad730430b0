package cache

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Invalidation lists what a mutation must evict.
type Invalidation struct {
	Prefixes []string
	Keys     []string
}

// Invalidate deletes the exact keys and every key under each distinct prefix.
// Prefix scans run concurrently; the first error is returned after all finish.
func Invalidate(ctx context.Context, c Cache, inv Invalidation) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, prefix := range unique(inv.Prefixes) {
		prefix := prefix
		g.Go(func() error {
			return c.DeleteByPrefix(gctx, prefix)
		})
	}
	if keys := unique(inv.Keys); len(keys) > 0 {
		g.Go(func() error {
			return c.Delete(gctx, keys...)
		})
	}
	return g.Wait()
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
