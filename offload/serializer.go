package offload

import (
	"math"

	"treeval/codec"
	"treeval/meta"
	"treeval/tree"
)

type Option func(s *Serializer)

// Serializer turns a tree into the command sequence that rebuilds it on the
// accelerator.
type Serializer struct {
	configOnce  bool
	weightScale float64
	maximize    func(i tree.Index) bool
}

// WithConfigOnce declares the final node count once, before the first node,
// instead of raising it node by node.
func WithConfigOnce() Option {
	return func(s *Serializer) {
		s.configOnce = true
	}
}

// WithWeightScale multiplies weights by scale before encoding them, so that
// fractional weights can be sent as fixed point.
func WithWeightScale(scale float64) Option {
	return func(s *Serializer) {
		if scale > 0 {
			s.weightScale = scale
		}
	}
}

// WithMaximize selects the strategy flag sent for each node.
func WithMaximize(maximize func(i tree.Index) bool) Option {
	return func(s *Serializer) {
		if maximize != nil {
			s.maximize = maximize
		}
	}
}

func NewSerializer(options ...Option) *Serializer {
	s := &Serializer{ // Default values
		weightScale: meta.WEIGHT_SCALE,
		maximize:    func(tree.Index) bool { return true },
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Walk emits the commands for t in pre-order. Every node gets the id of its
// position in the walk, so ids are dense and parents precede their children.
// For each node it emits the node count, then its parent, reward, action and
// weight; RunComputation comes last. Walk stops at the first error.
func (s *Serializer) Walk(t *tree.Tree, emit func(codec.Command) error) error {
	ids := make([]uint64, t.Len())
	count := uint64(0)

	if s.configOnce {
		if err := emit(codec.SetConfigData{Config: codec.ConfigNodes, Value: uint64(t.Len())}); err != nil {
			return err
		}
	}

	err := t.Walk(func(i tree.Index, depth int) error {
		id := count
		ids[i] = id
		count++

		if !s.configOnce {
			if err := emit(codec.SetConfigData{Config: codec.ConfigNodes, Value: count}); err != nil {
				return err
			}
		}

		n := t.Node(i)
		reward, err := magnitude(id, codec.FieldReward, n.Payoff)
		if err != nil {
			return err
		}
		weight, err := magnitude(id, codec.FieldWeight, n.Weight*s.weightScale)
		if err != nil {
			return err
		}
		if n.Action < 0 || n.Action > codec.MaxAction {
			return &codec.EncodingRangeError{Node: int(id), Field: codec.FieldAction.String(), Value: n.Action, Limit: codec.MaxAction}
		}

		commands := []codec.Command{
			codec.SetNodeData{Node: id, Field: codec.FieldParent, Data: ids[t.Parent(i)]},
			codec.SetNodeData{Node: id, Field: codec.FieldReward, Data: reward},
			codec.SetNodeData{Node: id, Field: codec.FieldAction, Data: codec.ActionData(s.maximize(i), uint8(n.Action))},
			codec.SetNodeData{Node: id, Field: codec.FieldWeight, Data: weight},
		}
		for _, c := range commands {
			if err := emit(c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return emit(codec.RunComputation{})
}

// Commands returns the command sequence for t.
func (s *Serializer) Commands(t *tree.Tree) ([]codec.Command, error) {
	commands := make([]codec.Command, 0, 5*t.Len()+1)
	err := s.Walk(t, func(c codec.Command) error {
		commands = append(commands, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commands, nil
}

// Serialize encodes the whole command sequence for t. On error no word is
// returned, so nothing of a tree that cannot be encoded is ever sent.
func (s *Serializer) Serialize(t *tree.Tree) ([]codec.Word, error) {
	words := make([]codec.Word, 0, 5*t.Len()+1)
	err := s.Walk(t, func(c codec.Command) error {
		w, err := c.Encode()
		if err != nil {
			return err
		}
		words = append(words, w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return words, nil
}

// magnitude converts a payoff or weight into an unsigned field value. The
// accelerator only takes whole, non-negative magnitudes.
func magnitude(node uint64, field codec.NodeField, v float64) (uint64, error) {
	if math.IsNaN(v) || v < 0 || v > codec.MaxNodeData || v != math.Trunc(v) {
		return 0, &codec.EncodingRangeError{Node: int(node), Field: field.String(), Value: v, Limit: codec.MaxNodeData}
	}
	return uint64(v), nil
}
