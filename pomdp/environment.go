package pomdp

import "context"

// Environment is the ground-truth simulator a driver steps against: it owns
// the one true current state and knows how to transition/score it. It is
// deliberately separate from Agent, which only ever sees observations drawn
// through an ObservationModel — never the Environment's state directly. The
// caller supplies the acting agent's history for the reward model, since
// Environment itself tracks no history of its own.
//
// Grounded on original_source/agent.py's Environment class.
type Environment[S State, A Action, O Observation] struct {
	Transition TransitionModel[S, A]
	Reward     RewardModel[S, A, O]

	state S
}

// NewEnvironment returns an Environment with the given true initial state.
func NewEnvironment[S State, A Action, O Observation](
	initState S,
	transition TransitionModel[S, A],
	reward RewardModel[S, A, O],
) *Environment[S, A, O] {
	return &Environment[S, A, O]{Transition: transition, Reward: reward, state: initState}
}

// State returns the environment's current true state.
func (e *Environment[S, A, O]) State() S {
	return e.state
}

// Step samples a successor state and reward for action a given the acting
// agent's history h, applies the transition, and returns the reward
// (matching original_source/agent.py's Environment.state_transition with
// execute=True).
func (e *Environment[S, A, O]) Step(ctx context.Context, a A, h History[A, O]) (reward float64, err error) {
	nextState, err := e.Transition.Sample(ctx, e.state, a)
	if err != nil {
		return 0, WrapDomainError(err)
	}
	reward, err = e.Reward.Sample(ctx, e.state, a, h, nextState)
	if err != nil {
		return 0, WrapDomainError(err)
	}
	e.state = nextState
	return reward, nil
}
