package pomcp

import (
	"pomcp/pomdp"
	"pomcp/pomdp/particles"
	"pomcp/pomdp/pouct"
)

// Options configures a Planner. It embeds pouct.Options for the shared
// budget/UCB/rollout knobs, adding the particle-belief-specific settings
// POUCT has no use for.
type Options[S pomdp.State, A pomdp.Action, O pomdp.Observation] struct {
	pouct.Options[S, A, O]

	// Approx/Distance configure the belief created for each new non-root
	// node: how its Probability resolves a state it holds no particle of,
	// once it has accumulated particles (an empty belief always returns 0);
	// see pomdp/particles.ApproxMethod.
	Approx   particles.ApproxMethod
	Distance particles.DistanceFunc[S]

	// TargetParticleCount is the particle count reinvigoration restores a
	// collapsed belief to after Update. If zero, New fills it in from the
	// agent's initial belief size, when that belief is a *particles.Belief[S].
	TargetParticleCount int
}
