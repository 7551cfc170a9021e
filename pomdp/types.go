// Package pomdp defines the core data model shared by the planner packages:
// state/action/observation capabilities, history, the generative-model
// contracts a domain must supply, and the agent that owns a belief and a
// history across planning steps.
package pomdp

// State is an opaque, domain-supplied world state. The planner never
// inspects a State beyond equality (for map-keying inside the search tree
// and particle belief), so comparable is the whole capability it needs.
type State = comparable

// Action is an opaque, domain-supplied action. Same capability as State.
type Action = comparable

// Observation is an opaque, domain-supplied observation. Same capability as
// State.
type Observation = comparable

// Step is one (action, observation) transition recorded in a History.
type Step[A Action, O Observation] struct {
	Action      A
	Observation O
}

// History is the ordered sequence of (action, observation) pairs that
// identifies a node's position in the conceptual search tree. It is grown
// only by appending a Step; the planner never mutates a History in place,
// it always derives an extended copy (see Append).
type History[A Action, O Observation] []Step[A, O]

// Append returns a new History with (a, o) appended, leaving the receiver
// untouched.
func (h History[A, O]) Append(a A, o O) History[A, O] {
	next := make(History[A, O], len(h)+1)
	copy(next, h)
	next[len(h)] = Step[A, O]{Action: a, Observation: o}
	return next
}

// Equal reports whether h and other hold the same sequence of steps.
func (h History[A, O]) Equal(other History[A, O]) bool {
	if len(h) != len(other) {
		return false
	}
	for i := range h {
		if h[i] != other[i] {
			return false
		}
	}
	return true
}
