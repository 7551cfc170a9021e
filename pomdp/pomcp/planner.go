// Package pomcp extends pouct with a particle-belief representation at
// every OR-node: POMCP. Root beliefs seed from the agent's current belief;
// non-root beliefs accumulate states reached at depth 1 across simulations,
// so that after a real action/observation is taken, the corresponding child
// already carries a usable (if under-sized) belief to reinvigorate.
//
// Grounded on original_source/pomcp.py's POMCP class.
package pomcp

import (
	"context"
	"fmt"
	"time"

	"pomcp/pomdp"
	"pomcp/pomdp/particles"
	"pomcp/pomdp/pouct"
	"pomcp/pomdp/reinvigoration"
	"pomcp/pomdp/searchtree"
)

// Planner is a POMCP online planner for one agent. Not safe for concurrent
// use from multiple goroutines.
type Planner[S pomdp.State, A pomdp.Action, O pomdp.Observation] struct {
	agent *pomdp.Agent[S, A, O]
	opts  Options[S, A, O]
	tree  *searchtree.Tree[A, O, *particles.Belief[S]]
}

// New returns a Planner for agent using opts. RolloutPolicy must be set;
// agent's current belief must be a *particles.Belief[S].
func New[S pomdp.State, A pomdp.Action, O pomdp.Observation](
	agent *pomdp.Agent[S, A, O],
	opts Options[S, A, O],
) (*Planner[S, A, O], error) {
	if opts.RolloutPolicy == nil {
		return nil, fmt.Errorf("pomcp: Options.RolloutPolicy is required")
	}
	opts.Options.Normalize()

	if opts.TargetParticleCount <= 0 {
		if b, ok := agent.Belief().(*particles.Belief[S]); ok {
			opts.TargetParticleCount = b.Len()
		}
	}
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
		return a, fmt.Errorf("pomcp: no simulations completed; planning budget too small")
	}
	best, ok := p.tree.BestAction(p.tree.Root)
	if !ok {
		return a, fmt.Errorf("pomcp: root has no expanded actions")
	}
	return best, nil
}

func (p *Planner[S, A, O]) shouldStop(sims int, start time.Time) bool {
	if p.opts.NumSims > 0 {
		return sims >= p.opts.NumSims
	}
	return time.Since(start) >= p.opts.PlanningTime
}

// simulate is pouct.Planner.simulate's recursive engine, generalized to a
// *particles.Belief[S]-carrying tree and with one addition: a node reached
// at depth 1 that already existed on entry (i.e. this is not the call that
// created it) has the entry state added to its belief, the way
// original_source/pomcp.py's POMCP._simulate does after delegating to
// POUCT._simulate. A node's own creating call is excluded deliberately —
// Python's override checks `root is not None` using the pre-creation
// parameter, which is only true on a node's second and later visits.
func (p *Planner[S, A, O]) simulate(
	ctx context.Context,
	s S,
	h pomdp.History[A, O],
	nodeID searchtree.ORNodeID,
	parentAndID searchtree.ANDNodeID,
	obs O,
	depth int,
) (float64, error) {
	creatingRoot := nodeID == 0 && p.tree == nil
	if !creatingRoot && depth >= p.opts.MaxDepth {
		return 0, nil
	}

	if nodeID == 0 {
		var newID searchtree.ORNodeID
		if creatingRoot {
			belief, ok := p.agent.Belief().(*particles.Belief[S])
			if !ok {
				return 0, pomdp.ErrBeliefTypeMismatch
			}
			p.tree = searchtree.New[A, O, *particles.Belief[S]]()
			newID = p.tree.NewORNode(true, h)
			p.tree.Root = newID
			p.tree.OR(newID).Belief = belief.Clone()
			if !p.tree.OR(newID).History.Equal(p.agent.History()) {
				return 0, pomdp.ErrInvalidHistory
			}
		} else {
			newID = p.tree.NewORNode(false, nil)
			p.tree.OR(newID).Belief = particles.New[S](nil, p.opts.Approx, p.opts.Distance)
		}
		if parentAndID != 0 {
			p.tree.SetObservationChild(parentAndID, obs, newID)
		}

		if err := pouct.ExpandORNode[S, A, O, *particles.Belief[S]](ctx, p.tree, newID, p.agent.Policy, s, h, p.opts.NumVisitsInit, p.opts.ValueInit); err != nil {
			return 0, err
		}
		return pouct.Rollout(ctx, p.agent.Models, p.opts.RolloutPolicy, p.opts.DiscountFactor, p.opts.MaxDepth, s, h, depth)
	}

	action, err := pouct.UCB1[A, O, *particles.Belief[S]](p.tree, nodeID, p.opts.C)
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

	orNode := p.tree.OR(nodeID)
	orNode.NumVisits++
	andNode := p.tree.AND(andID)
	andNode.NumVisits++
	andNode.Value += (total - andNode.Value) / float64(andNode.NumVisits)

	if depth == 1 {
		orNode.Belief.Add(s)
	}

	return total, nil
}

// Update advances the tree and the agent's belief after the real
// action/observation pair is applied: the matching child is
// promoted to root, its accumulated belief is reinvigorated back up to
// TargetParticleCount using transform, and the reinvigorated belief becomes
// both the agent's new belief and the new root's belief. Fails with
// ErrParticleDeprivation if the real observation was never explored during
// planning, or if it was explored but never accumulated any particles.
func (p *Planner[S, A, O]) Update(
	ctx context.Context,
	realAction A,
	realObservation O,
	transform pomdp.StateTransform[S],
) error {
	if _, ok := p.agent.Belief().(*particles.Belief[S]); !ok {
		return pomdp.ErrBeliefTypeMismatch
	}
	if p.tree == nil {
		return fmt.Errorf("pomcp: no tree to update; call Plan first")
	}

	andID, ok := p.tree.ActionChild(p.tree.Root, realAction)
	if !ok {
		return pomdp.ErrParticleDeprivation
	}
	orID, ok := p.tree.ObservationChild(andID, realObservation)
	if !ok {
		return pomdp.ErrParticleDeprivation
	}

	pruned := p.tree.PruneTo(orID, p.agent.History())

	reinvigorated, err := reinvigoration.Reinvigorate(ctx, pruned.OR(pruned.Root).Belief, p.opts.TargetParticleCount, transform)
	if err != nil {
		return err
	}
	p.agent.SetBelief(reinvigorated)
	pruned.OR(pruned.Root).Belief = reinvigorated.Clone()
	p.tree = pruned
	return nil
}

// Reset discards the planner's tree, forcing the next Plan call to build a
// fresh one seeded from the agent's current belief.
func (p *Planner[S, A, O]) Reset() {
	p.tree = nil
}

// RootStats returns the current root's per-action search statistics, or
// nil if Plan has not yet built a tree.
func (p *Planner[S, A, O]) RootStats() []pouct.ActionStat[A] {
	if p.tree == nil {
		return nil
	}
	return pouct.RootStats[A, O, *particles.Belief[S]](p.tree, p.tree.Root, p.opts.C)
}

// RootBelief returns the current root OR-node's particle belief, or nil if
// Plan has not yet built a tree.
func (p *Planner[S, A, O]) RootBelief() *particles.Belief[S] {
	if p.tree == nil {
		return nil
	}
	return p.tree.OR(p.tree.Root).Belief
}
