package tree

import (
	"errors"
	"fmt"

	"treeval/meta"
)

var (
	ErrTreeFull      = errors.New("tree is full")
	ErrActionRange   = errors.New("action id out of range")
	ErrUnknownParent = errors.New("unknown parent node")
)

// Tree is an arena owning every node of a decision tree. Children are stored
// as indices into the arena, so the whole tree is released at once when the
// Tree is dropped.
//
// A Tree is built once and may then be evaluated or serialized any number of
// times. Evaluation writes the per-node accumulators, so a Tree must not be
// evaluated from two goroutines at the same time.
type Tree struct {
	nodes []entry
}

func New(root Node) (*Tree, error) {
	if err := checkAction(root.Action); err != nil {
		return nil, err
	}
	t := &Tree{nodes: make([]entry, 0, 16)}
	t.nodes = append(t.nodes, entry{Node: root, parent: Root})
	return t, nil
}

// Add appends n as the last child of parent and returns its index.
func (t *Tree) Add(parent Index, n Node) (Index, error) {
	if !t.contains(parent) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownParent, parent)
	}
	if len(t.nodes) >= meta.MAX_NODES {
		return 0, fmt.Errorf("%w: at most %d nodes", ErrTreeFull, meta.MAX_NODES)
	}
	if err := checkAction(n.Action); err != nil {
		return 0, err
	}

	i := Index(len(t.nodes))
	t.nodes = append(t.nodes, entry{Node: n, parent: parent})
	t.nodes[parent].children = append(t.nodes[parent].children, i)
	return i, nil
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) Node(i Index) Node {
	return t.nodes[i].Node
}

// Parent returns the parent of i. The root is its own parent.
func (t *Tree) Parent(i Index) Index {
	return t.nodes[i].parent
}

// Children returns the children of i in insertion order. The slice is owned
// by the tree and must not be modified.
func (t *Tree) Children(i Index) []Index {
	return t.nodes[i].children
}

func (t *Tree) IsLeaf(i Index) bool {
	return len(t.nodes[i].children) == 0
}

// ActionValues returns the accumulator of i as left by the last evaluation.
func (t *Tree) ActionValues(i Index) [meta.NUM_ACTIONS]float64 {
	return t.nodes[i].actionEV
}

// Walk visits the tree in pre-order, children in insertion order. Walking
// stops at the first error returned by fn.
func (t *Tree) Walk(fn func(i Index, depth int) error) error {
	return t.walk(Root, 0, fn)
}

func (t *Tree) walk(i Index, depth int, fn func(Index, int) error) error {
	if err := fn(i, depth); err != nil {
		return err
	}
	for _, child := range t.nodes[i].children {
		if err := t.walk(child, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) contains(i Index) bool {
	return i >= 0 && int(i) < len(t.nodes)
}

func checkAction(action int) error {
	if action < 0 || action >= meta.NUM_ACTIONS {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrActionRange, action, meta.NUM_ACTIONS)
	}
	return nil
}
