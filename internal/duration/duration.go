// Package duration generates bounded, quantized random delays.
package duration

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// ErrInvalidBounds is returned when the generator bounds cannot produce a delay.
var ErrInvalidBounds = errors.New("duration: invalid bounds")

// Generator produces delays sampled uniformly from [min, max), rounded down to a multiple of the granularity.
type Generator struct {
	rng         *rand.Rand
	min         time.Duration
	span        int64
	granularity time.Duration
}

// New creates a Generator drawing from src. A nil src uses a randomly seeded PCG source.
func New(min, max, granularity time.Duration, src rand.Source) (*Generator, error) {
	if min >= max {
		return nil, fmt.Errorf("%w: min %s must be less than max %s", ErrInvalidBounds, min, max)
	}
	if granularity <= 0 {
		return nil, fmt.Errorf("%w: granularity %s must be positive", ErrInvalidBounds, granularity)
	}
	if min < 0 {
		return nil, fmt.Errorf("%w: min %s must not be negative", ErrInvalidBounds, min)
	}

	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	return &Generator{
		rng:         rand.New(src),
		min:         min,
		span:        int64(max - min),
		granularity: granularity,
	}, nil
}

// NewSeeded creates a Generator with a deterministic PCG source.
func NewSeeded(min, max, granularity time.Duration, seed uint64) (*Generator, error) {
	return New(min, max, granularity, rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Next returns the next delay.
func (g *Generator) Next() time.Duration {
	d := g.min + time.Duration(g.rng.Int64N(g.span))
	return d / g.granularity * g.granularity
}
