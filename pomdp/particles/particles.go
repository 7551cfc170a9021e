// Package particles implements the particle-belief representation: an
// unweighted multiset of states supporting uniform sampling, an empirical
// histogram, most-probable-explanation lookup, condensation (resampling a
// fixed number of unweighted particles in proportion to the histogram; the
// result is neither deduplicated nor weighted), and a domain-supplied
// abstraction map.
//
// Grounded on original_source/particles.py's Particles class and
// original_source/generator.py's Histogram cache-invalidation idiom.
package particles

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
)

// ApproxMethod selects how Probability resolves a state with zero particles.
type ApproxMethod int

const (
	// ApproxNone returns 0 for any state not present in the histogram.
	ApproxNone ApproxMethod = iota
	// ApproxNearest returns the frequency of the nearest particle by the
	// belief's configured DistanceFunc.
	ApproxNearest
)

// DistanceFunc measures dissimilarity between two states, used only by
// ApproxNearest.
type DistanceFunc[S comparable] func(a, b S) float64

// Belief is an unweighted multiset of particles of type S.
type Belief[S comparable] struct {
	particles []S

	approx   ApproxMethod
	distance DistanceFunc[S]

	hist      map[S]float64
	histValid bool
}

// New constructs a Belief from an initial particle slice (copied). approx
// and distance configure out-of-support Probability queries; pass
// ApproxNone and nil when nearest-neighbor lookup is not needed.
func New[S comparable](initial []S, approx ApproxMethod, distance DistanceFunc[S]) *Belief[S] {
	particles := make([]S, len(initial))
	copy(particles, initial)
	return &Belief[S]{
		particles: particles,
		approx:    approx,
		distance:  distance,
	}
}

// Len returns the number of particles (N).
func (b *Belief[S]) Len() int {
	return len(b.particles)
}

// Sample draws one particle uniformly at random. Fails if the belief is
// empty.
func (b *Belief[S]) Sample(ctx context.Context) (s S, err error) {
	if len(b.particles) == 0 {
		return s, fmt.Errorf("particles: sample from empty belief")
	}
	return b.particles[rand.Intn(len(b.particles))], nil
}

// Add appends a particle and invalidates the histogram cache.
func (b *Belief[S]) Add(s S) {
	b.particles = append(b.particles, s)
	b.histValid = false
}

// Histogram returns the empirical state->probability map, rebuilding the
// cache if it was invalidated by a mutation since the last query. N must be
// >= 1 for a meaningful query; an empty belief returns an empty map.
func (b *Belief[S]) Histogram() map[S]float64 {
	b.ensureHistogram()
	out := make(map[S]float64, len(b.hist))
	for s, p := range b.hist {
		out[s] = p
	}
	return out
}

func (b *Belief[S]) ensureHistogram() {
	if b.histValid {
		return
	}
	hist := make(map[S]float64, len(b.particles))
	for _, s := range b.particles {
		hist[s]++
	}
	n := float64(len(b.particles))
	if n > 0 {
		for s := range hist {
			hist[s] /= n
		}
	}
	b.hist = hist
	b.histValid = true
}

// Probability returns the empirical frequency of s. On a miss, it returns 0
// in ApproxNone mode, or the frequency of the nearest particle (by
// DistanceFunc) in ApproxNearest mode.
func (b *Belief[S]) Probability(s S) float64 {
	b.ensureHistogram()
	if p, ok := b.hist[s]; ok {
		return p
	}
	switch b.approx {
	case ApproxNearest:
		if len(b.particles) == 0 || b.distance == nil {
			return 0
		}
		nearest := b.particles[0]
		nearestDist := b.distance(s, nearest)
		for _, candidate := range b.particles[1:] {
			d := b.distance(s, candidate)
			if d < nearestDist {
				nearestDist = d
				nearest = candidate
			}
		}
		return b.hist[nearest]
	default:
		return 0
	}
}

// MPE returns the most frequent particle (most probable explanation). Ties
// are broken by the histogram's iteration order, matching
// original_source/particles.py's `max(self._hist, key=...)` tie behavior
// (first key encountered with the max value wins under Python's max(); Go
// map iteration order is randomized, so ties here are broken
// nondeterministically unless the caller cares only about the value, which
// is the documented contract — MPE does not claim a deterministic tie-break
// across ties, only over the empirical distribution itself).
func (b *Belief[S]) MPE() (s S, err error) {
	b.ensureHistogram()
	if len(b.hist) == 0 {
		return s, fmt.Errorf("particles: mpe of empty belief")
	}
	best := -1.0
	for candidate, p := range b.hist {
		if p > best {
			best = p
			s = candidate
		}
	}
	return s, nil
}

// condenseParticleCount is how many particles Condense resamples to,
// matching original_source/particles.py's from_histogram default.
const condenseParticleCount = 1000

// Condense returns a new Belief of condenseParticleCount particles resampled
// from b's histogram, each drawn with probability proportional to its
// empirical frequency in b: the histogram re-expressed as particles, so the
// condensed belief's own Histogram reproduces b's relative frequencies
// (within resampling noise) rather than collapsing every state to an equal
// share. Grounded on original_source/particles.py's condense ->
// from_histogram, which stochastically resamples ~1000 particles drawn
// proportional to the original histogram.
func (b *Belief[S]) Condense() *Belief[S] {
	b.ensureHistogram()
	if len(b.hist) == 0 {
		return New[S](nil, b.approx, b.distance)
	}

	states := make([]S, 0, len(b.hist))
	cumulative := make([]float64, 0, len(b.hist))
	sum := 0.0
	for s, p := range b.hist {
		sum += p
		states = append(states, s)
		cumulative = append(cumulative, sum)
	}

	resampled := make([]S, condenseParticleCount)
	for i := range resampled {
		r := rand.Float64() * sum
		idx := sort.Search(len(cumulative), func(j int) bool { return cumulative[j] >= r })
		if idx == len(cumulative) {
			idx = len(cumulative) - 1
		}
		resampled[i] = states[idx]
	}
	return New(resampled, b.approx, b.distance)
}

// Abstract maps every particle through a domain-supplied state abstraction,
// returning the resulting slice (not itself a Belief, since an abstraction
// target type T need not be comparable/hashable the way S is).
func Abstract[S comparable, T any](b *Belief[S], f func(S) T) []T {
	out := make([]T, len(b.particles))
	for i, s := range b.particles {
		out[i] = f(s)
	}
	return out
}

// Clone returns a deep (particle-slice) copy of b, used by reinvigoration
// and by POMCP's root-belief attachment, matching original_source/pomcp.py's
// copy.deepcopy(self.agent.cur_belief) at root construction.
func (b *Belief[S]) Clone() *Belief[S] {
	clone := New(b.particles, b.approx, b.distance)
	return clone
}
