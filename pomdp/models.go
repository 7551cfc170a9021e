package pomdp

import "context"

// TransitionModel samples a successor state given (s, a). Deterministic or
// stochastic; any randomness is the domain's own responsibility (an rng may
// be threaded through a closure or a domain-held field).
type TransitionModel[S State, A Action] interface {
	Sample(ctx context.Context, s S, a A) (S, error)
}

// ObservationModel samples an observation given the successor state and the
// action taken to reach it.
type ObservationModel[S State, A Action, O Observation] interface {
	Sample(ctx context.Context, nextState S, a A) (O, error)
}

// RewardModel samples (or computes) a reward for the (s, a, h, s') tuple.
type RewardModel[S State, A Action, O Observation] interface {
	Sample(ctx context.Context, s S, a A, h History[A, O], nextState S) (float64, error)
}

// PolicyModel enumerates the valid actions at a given state/history. The
// returned slice must be non-empty; duplicates are harmless since the
// search tree keys AND-nodes by action.
type PolicyModel[S State, A Action, O Observation] interface {
	EnumerateActions(ctx context.Context, s S, h History[A, O]) ([]A, error)
}

// RolloutPolicy picks one action to drive a bootstrapped rollout from a leaf.
type RolloutPolicy[S State, A Action, O Observation] interface {
	Rollout(ctx context.Context, s S, h History[A, O]) (A, error)
}

// StateTransform perturbs a state into a domain-coherent neighbor, used by
// reinvigoration to manufacture fresh particles from existing ones. A nil
// StateTransform is a legal no-op (clone only, no perturbation).
type StateTransform[S State] interface {
	Transform(ctx context.Context, s S) (S, error)
}

// StateTransformFunc adapts a plain function to StateTransform.
type StateTransformFunc[S State] func(ctx context.Context, s S) (S, error)

func (f StateTransformFunc[S]) Transform(ctx context.Context, s S) (S, error) {
	return f(ctx, s)
}

// GenerativeModel bundles the three sampling contracts the planner drives
// per simulation step, mirroring original_source/particles.py's
// sample_generative_model / sample_explicit_models.
type GenerativeModel[S State, A Action, O Observation] struct {
	Transition  TransitionModel[S, A]
	Observation ObservationModel[S, A, O]
	Reward      RewardModel[S, A, O]
}

// Sample returns (next_state, observation, reward) for (s, a, h). It draws
// the successor state first, since both the reward and observation models
// take it, then the reward, then the observation.
func (g GenerativeModel[S, A, O]) Sample(
	ctx context.Context,
	s S,
	a A,
	h History[A, O],
) (nextState S, obs O, reward float64, err error) {
	nextState, err = g.Transition.Sample(ctx, s, a)
	if err != nil {
		return nextState, obs, 0, WrapDomainError(err)
	}
	reward, err = g.Reward.Sample(ctx, s, a, h, nextState)
	if err != nil {
		return nextState, obs, 0, WrapDomainError(err)
	}
	obs, err = g.Observation.Sample(ctx, nextState, a)
	if err != nil {
		return nextState, obs, 0, WrapDomainError(err)
	}
	return nextState, obs, reward, nil
}
