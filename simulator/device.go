package simulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"treeval/codec"
	"treeval/meta"
	"treeval/metrics"
	"treeval/transport"
	"treeval/tree"
)

var (
	ErrNodeNotConfigured   = errors.New("node id not covered by the configured node count")
	ErrNodeCountShrunk     = errors.New("node count below an id already in use")
	ErrTooManyNodes        = errors.New("node count exceeds the node id space")
	ErrMinimizeUnsupported = errors.New("minimizing nodes are not supported")
	ErrIncompleteTree      = errors.New("incomplete tree")
)

type Option func(d *Device)

// WithWeightScale divides received weights by scale, matching a serializer
// that sends fixed-point weights.
func WithWeightScale(scale float64) Option {
	return func(d *Device) {
		if scale > 0 {
			d.weightScale = scale
		}
	}
}

func WithCollector(collector metrics.Collector) Option {
	return func(d *Device) {
		if collector != nil {
			d.collector = collector
		}
	}
}

const (
	hasParent = 1 << codec.FieldParent
	hasAction = 1 << codec.FieldAction
	hasReward = 1 << codec.FieldReward
	hasWeight = 1 << codec.FieldWeight
	hasAll    = hasParent | hasAction | hasReward | hasWeight
)

type nodeState struct {
	parent uint64
	action uint8
	reward uint64
	weight uint64
	fields uint8
}

// Device models the accelerator at its protocol boundary. It accumulates
// node data between runs and answers every RunComputation with one result
// word, then starts a new session.
type Device struct {
	weightScale float64
	collector   metrics.Collector

	configured uint64
	used       uint64 // one past the highest node id seen
	nodes      [meta.MAX_NODES]nodeState
}

func NewDevice(options ...Option) *Device {
	d := &Device{ // Default values
		weightScale: meta.WEIGHT_SCALE,
		collector:   metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// Apply consumes one command word. It returns the result word and true when
// the word was RunComputation.
func (d *Device) Apply(w codec.Word) (codec.Word, bool, error) {
	cmd, err := codec.Decode(w)
	if err != nil {
		return 0, false, err
	}
	d.collector.CommandSent(cmd.Kind().String())

	switch cmd := cmd.(type) {
	case codec.SetConfigData:
		return 0, false, d.configure(cmd.Value)
	case codec.SetNodeData:
		return 0, false, d.set(cmd)
	case codec.RunComputation:
		result, err := d.compute()
		d.reset()
		return result, err == nil, err
	default:
		panic("Unexpected command type")
	}
}

// Serve applies words from port until the port closes, ctx is done or a
// word violates the protocol. Violations are reported through port.Fail.
func (d *Device) Serve(ctx context.Context, port transport.Port) error {
	for {
		w, err := port.Next(ctx)
		if err != nil {
			return err
		}

		result, done, err := d.Apply(w)
		if err != nil {
			log.Warn().Msgf("accelerator rejected %s: %v", w, err)
			port.Fail(err)
			d.reset()
			return err
		}
		if done {
			if err := port.Reply(ctx, result); err != nil {
				return err
			}
		}
	}
}

func (d *Device) configure(count uint64) error {
	if count > meta.MAX_NODES {
		return fmt.Errorf("%w: %d > %d", ErrTooManyNodes, count, meta.MAX_NODES)
	}
	if count < d.used {
		return fmt.Errorf("%w: %d < %d", ErrNodeCountShrunk, count, d.used)
	}
	d.configured = count
	return nil
}

func (d *Device) set(cmd codec.SetNodeData) error {
	if cmd.Node >= d.configured {
		return fmt.Errorf("%w: node %d with %d nodes configured", ErrNodeNotConfigured, cmd.Node, d.configured)
	}

	n := &d.nodes[cmd.Node]
	switch cmd.Field {
	case codec.FieldParent:
		n.parent = cmd.Data
	case codec.FieldAction:
		maximize, action := cmd.Action()
		if !maximize {
			return fmt.Errorf("%w: node %d", ErrMinimizeUnsupported, cmd.Node)
		}
		n.action = action
	case codec.FieldReward:
		n.reward = cmd.Data
	case codec.FieldWeight:
		n.weight = cmd.Data
	}
	n.fields |= 1 << cmd.Field
	d.used = max(d.used, cmd.Node+1)
	return nil
}

// compute rebuilds the tree from node data. Ids are dense, node 0 is the root
// and every other node's parent has a lower id.
func (d *Device) compute() (codec.Word, error) {
	if d.configured == 0 {
		return 0, fmt.Errorf("%w: no nodes configured", ErrIncompleteTree)
	}

	var t *tree.Tree
	for id := uint64(0); id < d.configured; id++ {
		n := d.nodes[id]
		if n.fields != hasAll {
			return 0, fmt.Errorf("%w: node %d is missing data", ErrIncompleteTree, id)
		}
		node := tree.NewNodeWith(int(n.action), float64(n.reward), float64(n.weight)/d.weightScale)

		if id == 0 {
			if n.parent != 0 {
				return 0, fmt.Errorf("%w: root has parent %d", ErrIncompleteTree, n.parent)
			}
			var err error
			if t, err = tree.New(node); err != nil {
				return 0, err
			}
			continue
		}
		if n.parent >= id {
			return 0, fmt.Errorf("%w: node %d has parent %d", ErrIncompleteTree, id, n.parent)
		}
		if _, err := t.Add(tree.Index(n.parent), node); err != nil {
			return 0, err
		}
	}

	start := time.Now()
	result := t.Solve()
	d.collector.Evaluated(time.Since(start))

	action := result.Action
	if action == tree.NoAction {
		action = 0
	}
	return codec.EncodeResult(uint8(action), uint64(max(result.Value, 0))), nil
}

func (d *Device) reset() {
	d.configured = 0
	d.used = 0
	d.nodes = [meta.MAX_NODES]nodeState{}
}
