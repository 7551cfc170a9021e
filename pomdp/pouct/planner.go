// Package pouct implements POUCT: UCB1 action selection over an AND/OR
// search tree, with bootstrapped-rollout value estimates at newly expanded
// nodes.
//
// Grounded on original_source/pomcp.py's POUCT class (_search/_simulate/
// _rollout/_ucb/update).
package pouct

import (
	"context"
	"fmt"
	"time"

	"pomcp/pomdp"
	"pomcp/pomdp/searchtree"
)

// Planner is a POUCT online planner for one agent. It is not safe for
// concurrent use from multiple goroutines; run one Planner per agent, the
// way original_source/pomcp.py runs one POUCT per Agent.
type Planner[S pomdp.State, A pomdp.Action, O pomdp.Observation] struct {
	agent *pomdp.Agent[S, A, O]
	opts  Options[S, A, O]
	tree  *searchtree.Tree[A, O, struct{}]
}

// New returns a Planner for agent using opts. RolloutPolicy must be set.
func New[S pomdp.State, A pomdp.Action, O pomdp.Observation](
	agent *pomdp.Agent[S, A, O],
	opts Options[S, A, O],
) (*Planner[S, A, O], error) {
	if opts.RolloutPolicy == nil {
		return nil, fmt.Errorf("pouct: Options.RolloutPolicy is required")
	}
	opts.Normalize()
	return &Planner[S, A, O]{agent: agent, opts: opts}, nil
}

// Plan runs simulations from the agent's current belief/history until the
// planning budget is exhausted, then returns the root's best action.
func (p *Planner[S, A, O]) Plan(ctx context.Context) (a A, err error) {
	if p.tree != nil {
		root := p.tree.OR(p.tree.Root)
		if !root.History.Equal(p.agent.History()) {
			p.tree = nil
		}
	}

	start := time.Now()
	sims := 0
	var zeroObs O
	for !p.shouldStop(sims, start) {
		if err := ctx.Err(); err != nil {
			return a, err
		}
		s, err := p.agent.SampleBelief(ctx)
		if err != nil {
			return a, err
		}
		var rootID searchtree.ORNodeID
		if p.tree != nil {
			rootID = p.tree.Root
		}
		if _, err := p.simulate(ctx, s, p.agent.History(), rootID, 0, zeroObs, 0); err != nil {
			return a, err
		}
		sims++
	}

	if p.tree == nil {
		return a, fmt.Errorf("pouct: no simulations completed; planning budget too small")
	}
	best, ok := p.tree.BestAction(p.tree.Root)
	if !ok {
		return a, fmt.Errorf("pouct: root has no expanded actions")
	}
	return best, nil
}

func (p *Planner[S, A, O]) shouldStop(sims int, start time.Time) bool {
	if p.opts.NumSims > 0 {
		return sims >= p.opts.NumSims
	}
	return time.Since(start) >= p.opts.PlanningTime
}

// simulate descends one simulated trajectory from (s, h) starting at nodeID
// (the zero ORNodeID means "unexpanded"), returning the discounted return
// accrued from this point on. parentAndID/obs identify the AND-node this
// OR-node would be attached under as an observation-child, when nodeID is
// the zero value and a new node must be created and linked in (parentAndID
// zero means nodeID is the tree root).
func (p *Planner[S, A, O]) simulate(
	ctx context.Context,
	s S,
	h pomdp.History[A, O],
	nodeID searchtree.ORNodeID,
	parentAndID searchtree.ANDNodeID,
	obs O,
	depth int,
) (float64, error) {
	// creatingRoot identifies the single very-first simulate call since the
	// tree was last discarded: it must run regardless of depth/MaxDepth so
	// that Plan always has a root to read BestAction from, even when
	// MaxDepth is 0. Every other call is cut off at depth >= MaxDepth (the
	// planning horizon), whether it would have selected an action at an
	// existing node or created a fresh leaf.
	creatingRoot := nodeID == 0 && p.tree == nil
	if !creatingRoot && depth >= p.opts.MaxDepth {
		return 0, nil
	}

	if nodeID == 0 {
		if creatingRoot {
			p.tree = searchtree.New[A, O, struct{}]()
		}

		var newID searchtree.ORNodeID
		if creatingRoot {
			newID = p.tree.NewORNode(true, h)
			p.tree.Root = newID
			if !p.tree.OR(newID).History.Equal(p.agent.History()) {
				return 0, pomdp.ErrInvalidHistory
			}
		} else {
			newID = p.tree.NewORNode(false, nil)
		}
		if parentAndID != 0 {
			p.tree.SetObservationChild(parentAndID, obs, newID)
		}

		if err := ExpandORNode[S, A, O, struct{}](ctx, p.tree, newID, p.agent.Policy, s, h, p.opts.NumVisitsInit, p.opts.ValueInit); err != nil {
			return 0, err
		}
		return Rollout(ctx, p.agent.Models, p.opts.RolloutPolicy, p.opts.DiscountFactor, p.opts.MaxDepth, s, h, depth)
	}

	action, err := UCB1[A, O, struct{}](p.tree, nodeID, p.opts.C)
	if err != nil {
		return 0, err
	}
	andID, _ := p.tree.ActionChild(nodeID, action)

	nextState, observation, reward, err := p.agent.Models.Sample(ctx, s, action, h)
	if err != nil {
		return 0, err
	}

	childID, _ := p.tree.ObservationChild(andID, observation)
	g, err := p.simulate(ctx, nextState, h.Append(action, observation), childID, andID, observation, depth+1)
	if err != nil {
		return 0, err
	}

	total := reward + p.opts.DiscountFactor*g

	// Backup happens only here, on the caller's own frame — not inside the
	// nodeID==0 expansion branch above, which returns its rollout estimate
	// straight through without touching any node's statistics.
	orNode := p.tree.OR(nodeID)
	orNode.NumVisits++
	andNode := p.tree.AND(andID)
	andNode.NumVisits++
	andNode.Value += (total - andNode.Value) / float64(andNode.NumVisits)

	return total, nil
}

// Update advances the planner's tree after the real action/observation pair
// is applied: if the root has a matching action/observation
// child, that subtree is promoted to the new root; otherwise the tree is
// discarded and the next Plan call rebuilds one from scratch. The agent's
// own history must already reflect the extension (the caller is expected to
// call Agent.UpdateHistory before Planner.Update, as
// original_source/pomcp.py's driver loop does).
func (p *Planner[S, A, O]) Update(realAction A, realObservation O) error {
	if p.tree == nil {
		return nil
	}
	andID, ok := p.tree.ActionChild(p.tree.Root, realAction)
	if !ok {
		p.tree = nil
		return nil
	}
	orID, ok := p.tree.ObservationChild(andID, realObservation)
	if !ok {
		p.tree = nil
		return nil
	}
	p.tree = p.tree.PruneTo(orID, p.agent.History())
	return nil
}

// Reset discards the planner's tree, forcing the next Plan call to build a
// fresh one from the agent's current belief.
func (p *Planner[S, A, O]) Reset() {
	p.tree = nil
}

// RootStats returns the current root's per-action search statistics, or
// nil if Plan has not yet built a tree. Read-only; safe to call between
// planning calls for an operator dashboard.
func (p *Planner[S, A, O]) RootStats() []ActionStat[A] {
	if p.tree == nil {
		return nil
	}
	return RootStats[A, O, struct{}](p.tree, p.tree.Root, p.opts.C)
}
