package pouct

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"pomcp/pomdp"
)

// constState is a single-state, single-action, single-observation MDP: every
// step returns reward 1 and observation "o", regardless of state. It exists
// purely to pin down the running-mean backup and horizon-cutoff arithmetic
// without a real domain's noise getting in the way.
type constTransition struct{}

func (constTransition) Sample(_ context.Context, s int, _ string) (int, error) { return s, nil }

type constObservation struct{}

func (constObservation) Sample(_ context.Context, _ int, _ string) (string, error) { return "o", nil }

type constReward struct{}

func (constReward) Sample(_ context.Context, _ int, _ string, _ pomdp.History[string, string], _ int) (float64, error) {
	return 1, nil
}

type onlyPolicy struct{ actions []string }

func (p onlyPolicy) EnumerateActions(_ context.Context, _ int, _ pomdp.History[string, string]) ([]string, error) {
	return p.actions, nil
}

type onlyRollout struct{ action string }

func (r onlyRollout) Rollout(_ context.Context, _ int, _ pomdp.History[string, string]) (string, error) {
	return r.action, nil
}

type fixedBelief struct{ s int }

func (b fixedBelief) Sample(_ context.Context) (int, error) { return b.s, nil }

func newConstAgent() *pomdp.Agent[int, string, string] {
	models := pomdp.GenerativeModel[int, string, string]{
		Transition:  constTransition{},
		Observation: constObservation{},
		Reward:      constReward{},
	}
	return pomdp.NewAgent[int, string, string](models, onlyPolicy{actions: []string{"a"}}, fixedBelief{s: 0})
}

func TestPlannerRunningMeanAndHorizon(t *testing.T) {
	ctx := context.Background()

	Convey("Given a 1-action/1-observation MDP with reward 1 every step", t, func() {
		agent := newConstAgent()

		Convey("With max_depth=3, discount=1, after two simulations the AND-child value is exactly 3", func() {
			p, err := New[int, string, string](agent, Options[int, string, string]{
				MaxDepth:       3,
				NumSims:        2,
				DiscountFactor: 1,
				C:              1.4142135623730951,
				RolloutPolicy:  onlyRollout{action: "a"},
			})
			So(err, ShouldBeNil)

			_, err = p.Plan(ctx)
			So(err, ShouldBeNil)

			andID, ok := p.tree.ActionChild(p.tree.Root, "a")
			So(ok, ShouldBeTrue)
			So(p.tree.AND(andID).Value, ShouldEqual, 3)
		})

		Convey("With max_depth=0, every AND-child value stays 0 regardless of simulation count", func() {
			p, err := New[int, string, string](agent, Options[int, string, string]{
				MaxDepth:       0,
				NumSims:        10,
				DiscountFactor: 1,
				C:              1.4142135623730951,
				RolloutPolicy:  onlyRollout{action: "a"},
			})
			So(err, ShouldBeNil)

			_, err = p.Plan(ctx)
			So(err, ShouldBeNil)

			andID, ok := p.tree.ActionChild(p.tree.Root, "a")
			So(ok, ShouldBeTrue)
			So(p.tree.AND(andID).Value, ShouldEqual, 0)
		})
	})
}

func TestPlannerTreeReuseAcrossUpdate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a planned tree with a real action/observation pair present at the root", t, func() {
		agent := newConstAgent()
		p, err := New[int, string, string](agent, Options[int, string, string]{
			MaxDepth:       3,
			NumSims:        5,
			DiscountFactor: 1,
			C:              1.4142135623730951,
			RolloutPolicy:  onlyRollout{action: "a"},
		})
		So(err, ShouldBeNil)

		_, err = p.Plan(ctx)
		So(err, ShouldBeNil)

		andID, ok := p.tree.ActionChild(p.tree.Root, "a")
		So(ok, ShouldBeTrue)
		orID, ok := p.tree.ObservationChild(andID, "o")
		So(ok, ShouldBeTrue)
		preVisits := p.tree.OR(orID).NumVisits

		Convey("Update promotes that child, preserving its num_visits", func() {
			agent.UpdateHistory("a", "o")
			err := p.Update("a", "o")
			So(err, ShouldBeNil)

			So(p.tree.OR(p.tree.Root).IsRoot, ShouldBeTrue)
			So(p.tree.OR(p.tree.Root).NumVisits, ShouldEqual, preVisits)
		})

		Convey("Update discards the tree when the real observation was never explored", func() {
			agent.UpdateHistory("a", "unseen")
			err := p.Update("a", "unseen")
			So(err, ShouldBeNil)
			So(p.tree, ShouldBeNil)
		})
	})
}

func TestUCB1PrefersUnvisitedChildren(t *testing.T) {
	Convey("Given an OR-node with one visited and one unvisited action", t, func() {
		agent := newConstAgent()
		p, err := New[int, string, string](agent, Options[int, string, string]{
			MaxDepth:       2,
			NumSims:        1,
			DiscountFactor: 1,
			C:              1.4142135623730951,
			RolloutPolicy:  onlyRollout{action: "a"},
		})
		So(err, ShouldBeNil)

		ctx := context.Background()
		_, err = p.Plan(ctx)
		So(err, ShouldBeNil)

		root := p.tree.Root
		visited, _ := p.tree.ActionChild(root, "a")
		p.tree.AND(visited).NumVisits = 5
		p.tree.AND(visited).Value = 0.1

		unvisited := p.tree.NewANDNode(0, 0)
		p.tree.SetActionChild(root, "b", unvisited)

		Convey("UCB1 selects the unvisited action (infinite score)", func() {
			best, err := UCB1[string, string, struct{}](p.tree, root, 1.4142135623730951)
			So(err, ShouldBeNil)
			So(best, ShouldEqual, "b")
		})
	})
}
