package tree

import "treeval/meta"

// Result is the expected value of a tree together with the action chosen at
// its root.
type Result struct {
	Value  float64
	Action int
}

// Evaluate returns the expected value of the whole tree.
func (t *Tree) Evaluate() float64 {
	return t.EvaluateAt(Root)
}

// EvaluateAt returns the expected value of the subtree rooted at i.
//
// A leaf is worth payoff*weight. An internal node sums its children's values
// into one bucket per action and is worth its best bucket times its weight.
// The best bucket starts at 0, so a node whose buckets are all negative is
// worth 0.
func (t *Tree) EvaluateAt(i Index) float64 {
	node := &t.nodes[i]
	if len(node.children) == 0 {
		return node.Payoff * node.Weight
	}

	node.actionEV = [meta.NUM_ACTIONS]float64{}
	for _, c := range node.children {
		node.actionEV[t.nodes[c].Action] += t.EvaluateAt(c)
	}

	_, best := bestAction(node.actionEV)
	return best * node.Weight
}

// Solve evaluates the tree and reports the best action at the root, or
// NoAction when the root is a leaf or no bucket is positive.
func (t *Tree) Solve() Result {
	value := t.Evaluate()
	action := NoAction
	if !t.IsLeaf(Root) {
		action, _ = bestAction(t.nodes[Root].actionEV)
	}
	return Result{Value: value, Action: action}
}

// bestAction scans actions in id order; the lowest action wins ties.
func bestAction(ev [meta.NUM_ACTIONS]float64) (int, float64) {
	action, best := NoAction, 0.0
	for a, v := range ev {
		if best < v {
			action, best = a, v
		}
	}
	return action, best
}
