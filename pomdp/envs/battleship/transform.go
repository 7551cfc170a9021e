package battleship

import (
	"context"
	"math/rand"

	"pomcp/pomdp"
)

// Transform perturbs a State by relocating a handful of ships to fresh
// uniformly-random positions, used by reinvigoration to manufacture
// particles near an existing one instead of drawing wholly fresh states.
//
// Grounded on original_source/types.py's State_Battleship._ship_move,
// which relocates 1-4 randomly-chosen ships to uniformly random positions
// with no validity check of its own. _ship_swap and _ship_merge's more
// elaborate geometry-preserving variants, which depend on comparing ship
// lengths pairwise, are not ported — _ship_move alone already gives
// reinvigoration a working perturbation hook without that bookkeeping.
type Transform struct {
	Rand *rand.Rand
}

func (t Transform) intn(n int) int {
	if t.Rand != nil {
		return t.Rand.Intn(n)
	}
	return rand.Intn(n)
}

func (t Transform) perm(n int) []int {
	if t.Rand != nil {
		return t.Rand.Perm(n)
	}
	return rand.Perm(n)
}

func (t Transform) Transform(_ context.Context, s State) (State, error) {
	out := s
	n := 1 + t.intn(NumShips)
	for _, i := range t.perm(NumShips)[:n] {
		out[i].Pos = Coord{X: t.intn(BoardSize), Y: t.intn(BoardSize)}
	}
	return out, nil
}

var _ pomdp.StateTransform[State] = Transform{}

// CoherentTransform wraps base so that a perturbed state contradicting h's
// recorded hits/misses is retried, up to maxAttempts times, falling back to
// the last attempt if none come out coherent. base.Transform itself has no
// way to see h (pomdp.StateTransform is history-agnostic), so this is the
// seam where State.CoherentWithHistory gets exercised during
// reinvigoration.
func CoherentTransform(base pomdp.StateTransform[State], h History, maxAttempts int) pomdp.StateTransform[State] {
	return pomdp.StateTransformFunc[State](func(ctx context.Context, s State) (State, error) {
		var out State
		var err error
		for attempt := 0; attempt < maxAttempts; attempt++ {
			out, err = base.Transform(ctx, s)
			if err != nil {
				return out, err
			}
			if out.CoherentWithHistory(h) {
				return out, nil
			}
		}
		return out, nil
	})
}
