package battleship

import (
	"context"

	"pomcp/pomdp"
)

// TransitionModel: the fleet never moves, so every action leaves the state
// unchanged, matching original_source/transition_model.py.
type TransitionModel struct{}

func (TransitionModel) Sample(_ context.Context, s State, _ Action) (State, error) {
	return s, nil
}

// ObservationModel reports whether the probed cell is occupied, matching
// original_source/observation_model.py.
type ObservationModel struct{}

func (ObservationModel) Sample(_ context.Context, nextState State, a Action) (Observation, error) {
	if nextState.IsOccupied(a) {
		return ObsHit, nil
	}
	return ObsMiss, nil
}

// RewardModel charges -1 per probe, paying off +100 only on the probe that
// completes the fleet (every occupied cell has now been probed at least
// once), matching original_source/reward_model.py.
type RewardModel struct{}

func (RewardModel) Sample(_ context.Context, s State, a Action, h History, _ State) (float64, error) {
	occupied := s.AllOccupied()

	// Can't possibly have won yet if there are more occupied cells than
	// probes made so far (this probe included) — original_source's own
	// short-circuit before the subset check.
	if len(occupied) > len(h)+1 {
		return -1, nil
	}

	probed := make(map[Coord]struct{}, len(h)+1)
	for _, step := range h {
		probed[step.Action] = struct{}{}
	}
	probed[a] = struct{}{}

	for _, c := range occupied {
		if _, ok := probed[c]; !ok {
			return -1, nil
		}
	}
	return 100, nil
}

// Models bundles the domain's generative model + policy.
func Models() (pomdp.GenerativeModel[State, Action, Observation], PolicyModel) {
	return pomdp.GenerativeModel[State, Action, Observation]{
		Transition:  TransitionModel{},
		Observation: ObservationModel{},
		Reward:      RewardModel{},
	}, PolicyModel{}
}
