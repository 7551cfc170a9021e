package pouct

import (
	"context"
	"fmt"
	"math"

	"pomcp/pomdp"
	"pomcp/pomdp/searchtree"
)

// ExpandORNode attaches one AND-child per action the policy model enumerates
// at (s, h) that the node does not already have a child for, each seeded
// with the planner's num_visits_init/value_init priors. Exported so package
// pomcp can share this step with its own simulate
// loop rather than duplicating it — the expansion step is identical for
// both planners; only what happens above and below it differs.
func ExpandORNode[S pomdp.State, A pomdp.Action, O pomdp.Observation, BeliefT any](
	ctx context.Context,
	tree *searchtree.Tree[A, O, BeliefT],
	id searchtree.ORNodeID,
	policy pomdp.PolicyModel[S, A, O],
	s S,
	h pomdp.History[A, O],
	numVisitsInit int,
	valueInit float64,
) error {
	actions, err := policy.EnumerateActions(ctx, s, h)
	if err != nil {
		return pomdp.WrapDomainError(err)
	}
	for _, a := range actions {
		if _, exists := tree.ActionChild(id, a); exists {
			continue
		}
		andID := tree.NewANDNode(numVisitsInit, valueInit)
		tree.SetActionChild(id, a, andID)
	}
	return nil
}

// UCB1 selects the action at OR-node id with the greatest UCB1 score:
// unvisited AND-children score +Inf (visited first), ties broken by
// first-encountered action. Exported for package pomcp.
func UCB1[A pomdp.Action, O pomdp.Observation, BeliefT any](
	tree *searchtree.Tree[A, O, BeliefT],
	id searchtree.ORNodeID,
	c float64,
) (best A, err error) {
	node := tree.OR(id)
	actions := tree.Actions(id)
	if len(actions) == 0 {
		return best, fmt.Errorf("pouct: ucb1: no expanded actions at node")
	}
	bestScore := math.Inf(-1)
	for i, a := range actions {
		andID, _ := tree.ActionChild(id, a)
		and := tree.AND(andID)

		var score float64
		if and.NumVisits == 0 {
			score = math.Inf(1)
		} else {
			score = and.Value + c*math.Sqrt(math.Log(float64(node.NumVisits+1))/float64(and.NumVisits))
		}
		if i == 0 || score > bestScore {
			best = a
			bestScore = score
		}
	}
	return best, nil
}

// ActionStat is a snapshot of one root action's search statistics, for
// driving an operator dashboard (see dashboard/planviews).
type ActionStat[A pomdp.Action] struct {
	Action    A
	NumVisits int
	Value     float64
	// UCB is the score UCB1 would currently assign this action;
	// math.Inf(1) for an action with zero visits.
	UCB float64
}

// RootStats returns id's per-action statistics, in first-encountered order.
// Exported for package pomcp, which reads its own tree's root the same way
// without duplicating UCB1's scoring arithmetic.
func RootStats[A pomdp.Action, O pomdp.Observation, BeliefT any](
	tree *searchtree.Tree[A, O, BeliefT],
	id searchtree.ORNodeID,
	c float64,
) []ActionStat[A] {
	node := tree.OR(id)
	actions := tree.Actions(id)
	stats := make([]ActionStat[A], len(actions))
	for i, a := range actions {
		andID, _ := tree.ActionChild(id, a)
		and := tree.AND(andID)
		var ucb float64
		if and.NumVisits == 0 {
			ucb = math.Inf(1)
		} else {
			ucb = and.Value + c*math.Sqrt(math.Log(float64(node.NumVisits+1))/float64(and.NumVisits))
		}
		stats[i] = ActionStat[A]{Action: a, NumVisits: and.NumVisits, Value: and.Value, UCB: ucb}
	}
	return stats
}

// Rollout runs a uniform-discount bootstrapped rollout from (s, h) at the
// given depth out to maxDepth, using rolloutPolicy to pick actions and
// models to sample transitions/observations/rewards — the expansion-time
// value bootstrap for a freshly created node. Exported for package pomcp.
func Rollout[S pomdp.State, A pomdp.Action, O pomdp.Observation](
	ctx context.Context,
	models pomdp.GenerativeModel[S, A, O],
	rolloutPolicy pomdp.RolloutPolicy[S, A, O],
	discount float64,
	maxDepth int,
	s S,
	h pomdp.History[A, O],
	depth int,
) (float64, error) {
	g := 0.0
	factor := 1.0
	for depth < maxDepth {
		a, err := rolloutPolicy.Rollout(ctx, s, h)
		if err != nil {
			return 0, pomdp.WrapDomainError(err)
		}
		nextState, obs, reward, err := models.Sample(ctx, s, a, h)
		if err != nil {
			return 0, err
		}
		g += factor * reward
		factor *= discount
		s = nextState
		h = h.Append(a, obs)
		depth++
	}
	return g, nil
}
