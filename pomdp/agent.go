package pomdp

import "context"

// Belief is the minimal capability the planner core needs from whatever
// representation an Agent's belief uses: a way to draw one state from it.
// pomdp/particles.Belief[S] satisfies this; a histogram-backed belief would
// too — such a belief can still be sampled from, it just isn't reinvigorated
// by pomdp/reinvigoration, which is particle-specific.
type Belief[S State] interface {
	Sample(ctx context.Context) (S, error)
}

// Agent bundles a domain's generative models and policy with the mutable
// planning state (current belief, history) a planner steps through.
// Grounded on original_source/agent.py's Agent class; the Go realization
// keeps the same field set (belief, transition/observation/reward models,
// policy, history) but
// narrows each to the capability interface it actually exercises.
type Agent[S State, A Action, O Observation] struct {
	Models GenerativeModel[S, A, O]
	Policy PolicyModel[S, A, O]

	belief  Belief[S]
	history History[A, O]
}

// NewAgent constructs an Agent with the given prior belief.
func NewAgent[S State, A Action, O Observation](
	models GenerativeModel[S, A, O],
	policy PolicyModel[S, A, O],
	initBelief Belief[S],
) *Agent[S, A, O] {
	return &Agent[S, A, O]{
		Models: models,
		Policy: policy,
		belief: initBelief,
	}
}

// Belief returns the agent's current belief.
func (a *Agent[S, A, O]) Belief() Belief[S] {
	return a.belief
}

// SetBelief replaces the agent's current belief, e.g. after reinvigoration.
func (a *Agent[S, A, O]) SetBelief(b Belief[S]) {
	a.belief = b
}

// History returns the agent's accumulated (action, observation) history.
func (a *Agent[S, A, O]) History() History[A, O] {
	return a.history
}

// UpdateHistory appends the real (action, observation) pair taken in the
// environment to the agent's history.
func (a *Agent[S, A, O]) UpdateHistory(action A, observation O) {
	a.history = a.history.Append(action, observation)
}

// SampleBelief draws one state from the agent's current belief.
func (a *Agent[S, A, O]) SampleBelief(ctx context.Context) (S, error) {
	return a.belief.Sample(ctx)
}
