// Package searchtree implements the two-layer AND/OR search tree: OR-nodes
// (history positions, indexed by action) and AND-nodes (action-at-history,
// indexed by observation). Nodes live in an arena of integer-indexed
// records rather than as a class hierarchy of linked objects: an arena has
// no cycles, so pruning reduces to "keep the subtree rooted at ID k; free
// the rest", which this package realizes by copying the kept subtree into
// a fresh arena rather than mark-and-sweep over the old one.
//
// Grounded on original_source/pomcp.py's TreeNode/ANDNode/ORNode/
// RootORNode/ORNodeParticles/RootORNodeParticles hierarchy, collapsed into
// one ORNode kind (with an optional belief field, populated only by the
// pomcp package) and one ANDNode kind.
package searchtree

import "pomcp/pomdp"

// ORNodeID indexes an OR-node (history position) in a Tree's arena.
type ORNodeID int

// ANDNodeID indexes an AND-node (action taken at a history position) in a
// Tree's arena.
type ANDNodeID int

// ORNode is a history-position node: the planner chooses an action here.
// Belief is used only by pomdp/pomcp (the zero value of BeliefT in plain
// POUCT trees); it is declared generically so package pomcp can store a
// *particles.Belief[S] here without searchtree needing to know anything
// about particle beliefs.
//
// Ids are 1-based (index 0 of each arena is reserved, see New), so the zero
// value of ORNodeID/ANDNodeID can serve as an "absent" sentinel without an
// extra validity flag.
type ORNode[A pomdp.Action, O pomdp.Observation, BeliefT any] struct {
	NumVisits int
	IsRoot    bool

	// History is populated only on the root OR-node: the full history
	// sequence, kept for sanity-checking tree reuse across planning calls.
	History pomdp.History[A, O]

	// Belief holds whatever belief representation the caller attaches
	// (zero value for plain POUCT).
	Belief BeliefT

	children map[A]ANDNodeID
	// actionOrder preserves first-encountered order across children, so
	// that UCB1 selection and BestAction break ties by first-encountered
	// action reproducibly instead of depending on Go's randomized map
	// iteration order.
	actionOrder []A
}

// ANDNode is an action-at-history node: nature chooses an observation here.
type ANDNode[O pomdp.Observation] struct {
	NumVisits int
	Value     float64

	children map[O]ORNodeID
}

// Tree is the arena owning all OR/AND nodes reachable from Root.
type Tree[A pomdp.Action, O pomdp.Observation, BeliefT any] struct {
	orNodes  []ORNode[A, O, BeliefT]
	andNodes []ANDNode[O]
	Root     ORNodeID
}

// New returns an empty tree (no root yet); call NewORNode to create one and
// assign the result to Root.
func New[A pomdp.Action, O pomdp.Observation, BeliefT any]() *Tree[A, O, BeliefT] {
	t := &Tree[A, O, BeliefT]{}
	// Reserve index 0 in both arenas so that the zero value of
	// ORNodeID/ANDNodeID never aliases a real node.
	t.orNodes = append(t.orNodes, ORNode[A, O, BeliefT]{})
	t.andNodes = append(t.andNodes, ANDNode[O]{})
	return t
}

// NewORNode allocates a fresh OR-node and returns its id.
func (t *Tree[A, O, BeliefT]) NewORNode(isRoot bool, history pomdp.History[A, O]) ORNodeID {
	id := ORNodeID(len(t.orNodes))
	t.orNodes = append(t.orNodes, ORNode[A, O, BeliefT]{
		IsRoot:   isRoot,
		History:  history,
		children: make(map[A]ANDNodeID),
	})
	return id
}

// NewANDNode allocates a fresh AND-node with the given prior statistics and
// returns its id.
func (t *Tree[A, O, BeliefT]) NewANDNode(numVisitsInit int, valueInit float64) ANDNodeID {
	id := ANDNodeID(len(t.andNodes))
	t.andNodes = append(t.andNodes, ANDNode[O]{
		NumVisits: numVisitsInit,
		Value:     valueInit,
		children:  make(map[O]ORNodeID),
	})
	return id
}

// OR returns a pointer to the OR-node for id, for in-place mutation.
func (t *Tree[A, O, BeliefT]) OR(id ORNodeID) *ORNode[A, O, BeliefT] {
	return &t.orNodes[id]
}

// AND returns a pointer to the AND-node for id, for in-place mutation.
func (t *Tree[A, O, BeliefT]) AND(id ANDNodeID) *ANDNode[O] {
	return &t.andNodes[id]
}

// ActionChild returns the AND-node id for action a under OR-node id, and
// whether it exists.
func (t *Tree[A, O, BeliefT]) ActionChild(id ORNodeID, a A) (ANDNodeID, bool) {
	child, ok := t.orNodes[id].children[a]
	return child, ok
}

// SetActionChild attaches the AND-node child for action a under OR-node id,
// recording first-encountered order if a is new.
func (t *Tree[A, O, BeliefT]) SetActionChild(id ORNodeID, a A, child ANDNodeID) {
	node := &t.orNodes[id]
	if _, exists := node.children[a]; !exists {
		node.actionOrder = append(node.actionOrder, a)
	}
	node.children[a] = child
}

// Actions returns the actions expanded at OR-node id, in first-encountered
// (expansion) order.
func (t *Tree[A, O, BeliefT]) Actions(id ORNodeID) []A {
	node := t.orNodes[id]
	out := make([]A, len(node.actionOrder))
	copy(out, node.actionOrder)
	return out
}

// ObservationChild returns the OR-node id reached by observation o under
// AND-node id, and whether it exists (false means "unexplored").
func (t *Tree[A, O, BeliefT]) ObservationChild(id ANDNodeID, o O) (ORNodeID, bool) {
	child, ok := t.andNodes[id].children[o]
	return child, ok
}

// SetObservationChild attaches the OR-node child for observation o under
// AND-node id.
func (t *Tree[A, O, BeliefT]) SetObservationChild(id ANDNodeID, o O, child ORNodeID) {
	t.andNodes[id].children[o] = child
}

// BestAction returns the action whose AND-child has the greatest Value,
// breaking ties by first-encountered action: it walks the OR-node's
// recorded expansion order (the same order Actions returns), not a map, so
// the tie-break is the same on every call for a given expansion order.
func (t *Tree[A, O, BeliefT]) BestAction(id ORNodeID) (best A, ok bool) {
	node := t.orNodes[id]
	bestValue := 0.0
	for i, a := range node.actionOrder {
		andID := node.children[a]
		v := t.andNodes[andID].Value
		if i == 0 || v > bestValue {
			best = a
			bestValue = v
		}
	}
	return best, len(node.actionOrder) > 0
}

// PruneTo returns a new Tree containing only the subtree reachable from
// newRoot in t, with newRoot promoted to the new tree's root, marked
// IsRoot, and carrying the given history: the "keep subtree rooted at k;
// free the rest" pruning operation, realized as a copy into a fresh arena
// rather than an in-place mark-sweep, which is simpler to get right and
// cheap relative to one planning budget's simulation cost.
func (t *Tree[A, O, BeliefT]) PruneTo(newRoot ORNodeID, history pomdp.History[A, O]) *Tree[A, O, BeliefT] {
	out := New[A, O, BeliefT]()
	rootCopy := t.copyORNode(out, newRoot)
	out.Root = rootCopy
	root := out.OR(rootCopy)
	root.IsRoot = true
	root.History = history
	return out
}

func (t *Tree[A, O, BeliefT]) copyORNode(out *Tree[A, O, BeliefT], id ORNodeID) ORNodeID {
	src := t.orNodes[id]
	newID := out.NewORNode(src.IsRoot, src.History)
	dst := out.OR(newID)
	dst.NumVisits = src.NumVisits
	dst.Belief = src.Belief
	for _, a := range src.actionOrder {
		newAndID := t.copyANDNode(out, src.children[a])
		out.SetActionChild(newID, a, newAndID)
	}
	return newID
}

func (t *Tree[A, O, BeliefT]) copyANDNode(out *Tree[A, O, BeliefT], id ANDNodeID) ANDNodeID {
	src := t.andNodes[id]
	newID := out.NewANDNode(src.NumVisits, src.Value)
	for o, orID := range src.children {
		newOrID := t.copyORNode(out, orID)
		out.SetObservationChild(newID, o, newOrID)
	}
	return newID
}
