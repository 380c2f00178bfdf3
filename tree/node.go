package tree

import "treeval/meta"

// Index addresses a node inside a Tree. Indices are stable for the lifetime of
// the tree and lie in [0, meta.MAX_NODES).
type Index int

// Root is the index of the root node of every tree.
const Root Index = 0

// NoAction is reported when no action beats the zero floor.
const NoAction = -1

// Node holds the values a caller supplies for one point of the tree.
//
// Action is the node's id as seen by its parent: children sharing an action
// are grouped into the same accumulator bucket. Payoff only matters for
// leaves. Weight scales the node's value on its way up to the parent.
type Node struct {
	Action int
	Payoff float64
	Weight float64
}

// NewNode returns a node with action 0, payoff 0 and weight 1.
func NewNode() Node {
	return Node{Action: 0, Payoff: 0, Weight: 1}
}

// NewNodeWith returns a node with the given action, payoff and weight.
func NewNodeWith(action int, payoff float64, weight float64) Node {
	return Node{Action: action, Payoff: payoff, Weight: weight}
}

type entry struct {
	Node
	parent   Index
	children []Index
	actionEV [meta.NUM_ACTIONS]float64
}
