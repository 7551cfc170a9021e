// Package reinvigoration implements resampling-with-perturbation to restore
// a target particle count after belief collapse.
//
// Grounded on original_source/particles.py's particle_reinvigoration.
package reinvigoration

import (
	"context"

	"pomcp/pomdp"
	"pomcp/pomdp/particles"
)

// Reinvigorate returns a copy of belief grown (if necessary) to targetN
// particles. If belief already holds targetN or more particles, the copy is
// returned unchanged. Otherwise, while the copy holds fewer than targetN
// particles, one particle is drawn uniformly at random, cloned, optionally
// perturbed by transform, and appended.
//
// Fails with pomdp.ErrParticleDeprivation if belief is empty, since there is
// then nothing to resample from.
func Reinvigorate[S pomdp.State](
	ctx context.Context,
	belief *particles.Belief[S],
	targetN int,
	transform pomdp.StateTransform[S],
) (*particles.Belief[S], error) {
	if belief.Len() == 0 {
		return nil, pomdp.ErrParticleDeprivation
	}

	out := belief.Clone()
	for out.Len() < targetN {
		// Draw from the original belief, not the growing copy, matching
		// original_source/particles.py: `next_state = copy.deepcopy(particles.random())`
		// samples from the pre-growth particle set throughout the loop.
		drawn, err := belief.Sample(ctx)
		if err != nil {
			return nil, err
		}
		if transform != nil {
			drawn, err = transform.Transform(ctx, drawn)
			if err != nil {
				return nil, err
			}
		}
		out.Add(drawn)
	}
	return out, nil
}
