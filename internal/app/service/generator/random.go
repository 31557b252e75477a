package generator

import (
	"math/rand/v2"

	"github.com/fatflowers/saasgen/pkg/types"
)

const (
	streamCustomers uint64 = 1
	streamCosts     uint64 = 2
	// per-customer lifecycle streams are streamLifecycle+index
	streamLifecycle uint64 = 1 << 32
)

// Source derives independent, reproducible random streams from one seed.
// Every stage draws from its own stream, so the output does not depend on
// scheduling or on how many workers process customers.
type Source struct {
	seed uint64
}

func NewSource(seed uint64) Source {
	return Source{seed: seed}
}

func (s Source) Customers() *rand.Rand { return s.stream(streamCustomers) }

func (s Source) Costs() *rand.Rand { return s.stream(streamCosts) }

// Lifecycle returns the stream for the subscription and payments of the
// customer at index i.
func (s Source) Lifecycle(i int) *rand.Rand { return s.stream(streamLifecycle + uint64(i)) }

func (s Source) stream(id uint64) *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, splitmix64(id)))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func intBetween(r *rand.Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

func int64Between(r *rand.Rand, lo, hi int64) int64 {
	return lo + r.Int64N(hi-lo+1)
}

// dateBetween draws uniformly from [from, to].
func dateBetween(r *rand.Rand, from, to types.Date) types.Date {
	return from.AddDays(r.IntN(from.DaysUntil(to) + 1))
}

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}

func chance(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}

// pickSegment draws a segment with probability proportional to its weight.
func pickSegment(r *rand.Rand, segments []Segment) types.Segment {
	var total float64
	for _, s := range segments {
		total += s.Weight
	}
	x := r.Float64() * total
	last := segments[0].Name
	for _, s := range segments {
		if s.Weight <= 0 {
			continue
		}
		if x < s.Weight {
			return s.Name
		}
		x -= s.Weight
		last = s.Name
	}
	// rounding can leave x marginally above the final bucket
	return last
}
