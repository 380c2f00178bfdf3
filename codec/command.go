package codec

import "fmt"

// Command is the decoded form of a command word: one of RunComputation,
// SetConfigData or SetNodeData.
type Command interface {
	Kind() Kind
	Encode() (Word, error)
	String() string
}

type RunComputation struct{}

type SetConfigData struct {
	Config ConfigKind
	Value  uint64
}

// SetNodeData updates one field of one node. For FieldAction, Data holds the
// packed strategy flag and action (see ActionData).
type SetNodeData struct {
	Node  uint64
	Field NodeField
	Data  uint64
}

func (RunComputation) Kind() Kind { return KindRunComputation }
func (SetConfigData) Kind() Kind  { return KindSetConfigData }
func (SetNodeData) Kind() Kind    { return KindSetNodeData }

func (RunComputation) Encode() (Word, error) {
	return EncodeRun(), nil
}

func (c SetConfigData) Encode() (Word, error) {
	if c.Config != ConfigNodes {
		return 0, &EncodingRangeError{Node: NoNode, Field: "config command", Value: uint8(c.Config), Limit: uint64(ConfigNodes)}
	}
	return EncodeConfigNodes(c.Value)
}

func (c SetNodeData) Encode() (Word, error) {
	switch c.Field {
	case FieldParent, FieldReward, FieldWeight:
		return encodeMagnitude(c.Node, c.Field, c.Data)
	case FieldAction:
		if c.Data > actionDataMax {
			return 0, rangeError(c.Node, "action data", c.Data, actionDataMax)
		}
		maximize, action := c.Action()
		return EncodeAction(c.Node, maximize, uint64(action))
	default:
		return 0, rangeError(c.Node, "node command", uint8(c.Field), uint64(FieldWeight))
	}
}

// Action unpacks the strategy flag and the action of a FieldAction command.
func (c SetNodeData) Action() (maximize bool, action uint8) {
	return c.Data&stratMask != 0, uint8(c.Data & actionMask)
}

func (RunComputation) String() string {
	return "run"
}

func (c SetConfigData) String() string {
	return fmt.Sprintf("config %s=%d", c.Config, c.Value)
}

func (c SetNodeData) String() string {
	if c.Field == FieldAction {
		maximize, action := c.Action()
		strategy := "minimize"
		if maximize {
			strategy = "maximize"
		}
		return fmt.Sprintf("node %d action=%d %s", c.Node, action, strategy)
	}
	return fmt.Sprintf("node %d %s=%d", c.Node, c.Field, c.Data)
}
