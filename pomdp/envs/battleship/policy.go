package battleship

import (
	"context"
	"math/rand"
)

// PolicyModel enumerates every board cell not yet probed in h.
//
// original_source/policy_model.py's get_all_actions builds this same
// already-probed exclusion by iterating all_actions and calling
// all_actions.remove(a) while ranging over all_actions itself — mutating a
// list mid-iteration, which skips the element following any removed one.
// This precomputes the excluded set first and filters in a single pass, so
// no enumerated cell is ever skipped.
type PolicyModel struct{}

func (PolicyModel) EnumerateActions(_ context.Context, _ State, h History) ([]Action, error) {
	excluded := make(map[Action]struct{}, len(h))
	for _, step := range h {
		excluded[step.Action] = struct{}{}
	}

	actions := make([]Action, 0, BoardSize*BoardSize-len(excluded))
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			c := Coord{X: x, Y: y}
			if _, skip := excluded[c]; skip {
				continue
			}
			actions = append(actions, c)
		}
	}
	return actions, nil
}

// RolloutPolicy samples a uniformly random cell on the board, ignoring
// history — matching original_source/policy_model.py's rollout, which
// delegates to sample() rather than get_all_actions(), and so may probe an
// already-probed cell during a bootstrapped rollout.
type RolloutPolicy struct{}

func (RolloutPolicy) Rollout(_ context.Context, _ State, _ History) (Action, error) {
	return Coord{X: rand.Intn(BoardSize), Y: rand.Intn(BoardSize)}, nil
}
