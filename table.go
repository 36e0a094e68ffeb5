package qforms

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Entry is one row of a class number table.
type Entry struct {
	D int64 `json:"d"`
	H int   `json:"h"`
}

// Table computes class numbers with a fixed counting mode and memoises
// the results. A Table is safe for concurrent use.
type Table struct {
	opts  options
	cache *lru.Cache[int64, int]
}

// NewTable returns a Table configured by opts.
func NewTable(opts ...Option) (*Table, error) {
	o := buildOptions(opts)
	if o.cacheSize <= 0 {
		return nil, errorf(ErrInvalidArgument, "cache size %d", o.cacheSize)
	}
	if o.workers <= 0 {
		return nil, errorf(ErrInvalidArgument, "workers %d", o.workers)
	}
	cache, err := lru.New[int64, int](o.cacheSize)
	if err != nil {
		return nil, err
	}
	return &Table{opts: o, cache: cache}, nil
}

// Mode returns the counting mode of t.
func (t *Table) Mode() CountMode { return t.opts.mode }

// ClassNumber is ClassNumber(D) in t's mode, served from the cache when
// possible.
func (t *Table) ClassNumber(D int64) (int, error) {
	if h, ok := t.cache.Get(D); ok {
		return h, nil
	}
	forms, err := reducedForms(D, t.opts)
	if err != nil {
		return 0, err
	}
	t.cache.Add(D, len(forms))
	return len(forms), nil
}

// Range returns the class numbers of every D in [lo, hi), ascending.
// Discriminants are evaluated concurrently by at most WithWorkers
// goroutines. Range stops early and returns ctx.Err() if ctx is done.
func (t *Table) Range(ctx context.Context, lo, hi int64) ([]Entry, error) {
	if lo < 1 || hi <= lo {
		return nil, errorf(ErrInvalidArgument, "range [%d, %d)", lo, hi)
	}
	t.opts.log.Debug("class number range",
		zap.Int64("lo", lo),
		zap.Int64("hi", hi),
		zap.Int("workers", t.opts.workers))

	out := make([]Entry, hi-lo)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.workers)
	for d := lo; d < hi; d++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			h, err := t.ClassNumber(d)
			if err != nil {
				return err
			}
			out[d-lo] = Entry{D: d, H: h}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// WithClassNumber returns the D in [lo, hi) whose class number is h.
func (t *Table) WithClassNumber(ctx context.Context, lo, hi int64, h int) ([]int64, error) {
	entries, err := t.Range(ctx, lo, hi)
	if err != nil {
		return nil, err
	}
	var ds []int64
	for _, e := range entries {
		if e.H == h {
			ds = append(ds, e.D)
		}
	}
	return ds, nil
}
