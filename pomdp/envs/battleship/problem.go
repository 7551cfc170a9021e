package battleship

import (
	"math/rand"

	"pomcp/pomdp"
	"pomcp/pomdp/particles"
)

// RandomState places one ship per length in ShipLengths at a uniformly
// random, non-colliding position, matching
// original_source/types.py's get_random_state.
func RandomState(rng *rand.Rand) State {
	placed := make([]Ship, 0, NumShips)
	for _, length := range ShipLengths {
		for {
			candidate := Ship{
				Pos:       Coord{X: rng.Intn(BoardSize), Y: rng.Intn(BoardSize)},
				Direction: 0,
				Length:    length,
			}
			if !collides(placed, candidate) {
				placed = append(placed, candidate)
				break
			}
		}
	}
	var s State
	copy(s[:], placed)
	return s
}

// InitialBelief returns a particle belief of numParticles independently
// sampled random fleet layouts.
func InitialBelief(rng *rand.Rand, numParticles int) *particles.Belief[State] {
	states := make([]State, numParticles)
	for i := range states {
		states[i] = RandomState(rng)
	}
	return particles.New(states, particles.ApproxNone, nil)
}

// NewProblem wires an Agent (driven by a particle belief over fleet
// layouts) and the ground-truth Environment it plans against, mirroring
// original_source/problem.py's Problem_Battleship constructor.
func NewProblem(rng *rand.Rand, numParticles int) (*pomdp.Agent[State, Action, Observation], *pomdp.Environment[State, Action, Observation]) {
	models, policy := Models()
	belief := InitialBelief(rng, numParticles)
	agent := pomdp.NewAgent[State, Action, Observation](models, policy, belief)

	trueState := RandomState(rng)
	env := pomdp.NewEnvironment[State, Action, Observation](trueState, TransitionModel{}, RewardModel{})
	return agent, env
}
