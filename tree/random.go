package tree

import (
	"fmt"

	"golang.org/x/exp/rand"

	"treeval/meta"
)

type RandomOption func(c *randomConfig)

type randomConfig struct {
	maxPayoff   int
	maxWeight   int
	maxChildren int
}

// WithMaxPayoff bounds leaf payoffs to [0, max].
func WithMaxPayoff(max int) RandomOption {
	return func(c *randomConfig) {
		if max >= 0 {
			c.maxPayoff = max
		}
	}
}

// WithMaxWeight bounds node weights to [1, max].
func WithMaxWeight(max int) RandomOption {
	return func(c *randomConfig) {
		if max > 0 {
			c.maxWeight = max
		}
	}
}

// WithMaxChildren caps the branching factor of generated nodes.
func WithMaxChildren(max int) RandomOption {
	return func(c *randomConfig) {
		if max > 0 {
			c.maxChildren = max
		}
	}
}

// Random builds a tree of exactly size nodes with whole, non-negative payoffs
// and weights, so the result can also be sent to an accelerator.
func Random(rng *rand.Rand, size int, options ...RandomOption) (*Tree, error) {
	if size <= 0 || size > meta.MAX_NODES {
		return nil, fmt.Errorf("tree size %d not in [1, %d]", size, meta.MAX_NODES)
	}
	c := &randomConfig{ // Default values
		maxPayoff:   10,
		maxWeight:   1,
		maxChildren: meta.NUM_ACTIONS,
	}
	for _, option := range options {
		option(c)
	}

	t, err := New(randomNode(rng, c))
	if err != nil {
		return nil, err
	}

	open := []Index{Root}
	for t.Len() < size {
		k := rng.Intn(len(open))
		parent := open[k]
		child, err := t.Add(parent, randomNode(rng, c))
		if err != nil {
			return nil, err
		}
		if len(t.Children(parent)) >= c.maxChildren { // Parent is saturated
			open[k] = open[len(open)-1]
			open = open[:len(open)-1]
		}
		open = append(open, child)
	}
	return t, nil
}

func randomNode(rng *rand.Rand, c *randomConfig) Node {
	return NewNodeWith(
		rng.Intn(meta.NUM_ACTIONS),
		float64(rng.Intn(c.maxPayoff+1)),
		float64(1+rng.Intn(c.maxWeight)),
	)
}
