package qforms

import (
	"runtime"

	"go.uber.org/zap"
)

// CountMode selects how ClassNumber counts reduced forms.
type CountMode int

const (
	// CountParity counts each reduced triple (a, b, c) with b >= 0 once.
	// It undercounts whenever a form and its mirror (a, -b, c) are
	// inequivalent: for D = 47 it reports 3 instead of 5.
	CountParity CountMode = iota

	// CountProper counts primitive reduced forms and adds the mirror
	// (a, -b, c) whenever 0 < b < a < c. This is the class number h(-D).
	CountProper
)

func (m CountMode) String() string {
	switch m {
	case CountParity:
		return "parity"
	case CountProper:
		return "proper"
	}
	return "unknown"
}

// ParseCountMode maps "parity" or "proper" to a CountMode.
func ParseCountMode(s string) (CountMode, error) {
	switch s {
	case "", "parity":
		return CountParity, nil
	case "proper":
		return CountProper, nil
	}
	return 0, errorf(ErrInvalidArgument, "count mode %q", s)
}

const (
	defaultCacheSize = 1024
	// qTolerance is the bound below which Im(q) is treated as zero.
	qTolerance = 1e-14
)

type options struct {
	log       *zap.Logger
	mode      CountMode
	cacheSize int
	workers   int
}

// Option configures the class number engine, a Table, or QEval.
type Option func(*options)

// WithLogger enables the debug trace. Counted (b, a, c) triples and the
// modular parameter q are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMode selects the counting mode. The default is CountParity.
func WithMode(m CountMode) Option { return func(o *options) { o.mode = m } }

// WithCacheSize sets the number of class numbers a Table memoises.
func WithCacheSize(n int) Option { return func(o *options) { o.cacheSize = n } }

// WithWorkers bounds the goroutines used by Table.Range.
func WithWorkers(n int) Option { return func(o *options) { o.workers = n } }

func buildOptions(opts []Option) options {
	o := options{
		log:       zap.NewNop(),
		mode:      CountParity,
		cacheSize: defaultCacheSize,
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
