package division

import "math/rand"

// Option applies a configuration option to the Divider.
type Option func(*Divider)

// WithSeed makes every call shuffle from a generator seeded with seed.
func WithSeed(seed int64) Option {
	return func(d *Divider) {
		d.newSource = func() rand.Source { return rand.NewSource(seed) }
	}
}

// WithRandSource sets the factory used to obtain a fresh random source per call.
func WithRandSource(fn func() rand.Source) Option {
	return func(d *Divider) {
		if fn != nil {
			d.newSource = fn
		}
	}
}

// WithMaxIterations caps the balancing refinement loop.
func WithMaxIterations(n int) Option {
	return func(d *Divider) {
		if n > 0 {
			d.maxIterations = n
		}
	}
}

// WithScoreThreshold sets the tolerated max-min team score gap.
func WithScoreThreshold(gap float64) Option {
	return func(d *Divider) {
		if gap > 0 {
			d.scoreThreshold = gap
		}
	}
}

// WithPositionThreshold sets the tolerated max-min per-position count gap.
func WithPositionThreshold(gap int) Option {
	return func(d *Divider) {
		if gap > 0 {
			d.positionThreshold = gap
		}
	}
}
