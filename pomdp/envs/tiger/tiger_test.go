package tiger

import (
	"context"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"pomcp/pomdp"
	"pomcp/pomdp/particles"
	"pomcp/pomdp/pouct"
)

func newPlanner(t *testing.T, belief []State) *pouct.Planner[State, Action, Observation] {
	models, policy := Models(2, 0.1)
	initBelief := particles.New(belief, particles.ApproxNone, nil)
	agent := pomdp.NewAgent[State, Action, Observation](models, policy, initBelief)

	p, err := pouct.New[State, Action, Observation](agent, pouct.Options[State, Action, Observation]{
		MaxDepth:       5,
		NumSims:        5000,
		DiscountFactor: 0.95,
		C:              1.4142135623730951,
		RolloutPolicy:  RolloutPolicy{Policy: policy},
	})
	if err != nil {
		t.Fatalf("pouct.New: %v", err)
	}
	return p
}

func repeat(s State, n int) []State {
	out := make([]State, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func TestTigerPlanning(t *testing.T) {
	ctx := context.Background()

	Convey("Given a uniform 50/50 belief over which door hides the tiger", t, func() {
		belief := append(repeat(DoorState(0), 50), repeat(DoorState(1), 50)...)
		p := newPlanner(t, belief)

		Convey("The best action is to listen rather than gamble on opening a door", func() {
			action, err := p.Plan(ctx)
			So(err, ShouldBeNil)
			So(action, ShouldEqual, ActionListen)
		})
	})

	Convey("Given a belief heavily concentrated on door 1 after repeated consistent growls", t, func() {
		belief := append(repeat(DoorState(1), 95), repeat(DoorState(0), 5)...)
		p := newPlanner(t, belief)

		Convey("The best action opens the other door, not the believed-tiger door", func() {
			action, err := p.Plan(ctx)
			So(err, ShouldBeNil)
			So(strings.HasPrefix(string(action), "open-"), ShouldBeTrue)
			So(action, ShouldNotEqual, OpenAction(1))
			So(action, ShouldEqual, OpenAction(0))
		})
	})
}
