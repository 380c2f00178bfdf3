package codec

import "fmt"

// Word is one 64-bit message exchanged with the accelerator.
//
// Command layout, MSB first:
//
//	[63:62] cmd       0=run, 1=node data, 2=config data
//	config: [61:60] cfg cmd (0=nodes), [59:0] value
//	node:   [61:52] node id, [51:50] node cmd (0=parent, 1=action, 2=reward, 3=weight), [49:0] data
//	action: data bit 3 = maximize, data [2:0] = action
//
// Result layout: [9:0] reward, [12:10] action, rest unused.
type Word uint64

func (w Word) String() string {
	return fmt.Sprintf("0x%016x", uint64(w))
}

const (
	cmdShift = 62
	cmdMask  = 0xC000000000000000 // {2'b11, 62'b0}

	cfgShift      = 60
	cfgMask       = 0x3000000000000000 // {2'b00, 2'b11, 60'b0}
	cfgDataMask   = 0x0FFFFFFFFFFFFFFF // {2'b00, 2'b00, 60'b1}
	cfgDataBits   = 60
	nodeIDShift   = 52
	nodeIDMask    = 0x3FF0000000000000 // {2'b00, 10'b1, 2'b00, 50'b0}
	nodeIDBits    = 10
	nodeCmdShift  = 50
	nodeCmdMask   = 0x000C000000000000 // {2'b00, 10'b0, 2'b11, 50'b0}
	nodeDataMask  = 0x0003FFFFFFFFFFFF // {2'b00, 10'b0, 2'b00, 50'b1}
	nodeDataBits  = 50
	stratShift    = 3
	stratMask     = 0x0000000000000008
	actionMask    = 0x0000000000000007
	actionBits    = 3
	actionDataMax = stratMask | actionMask

	resultActionShift = 10
	resultActionMask  = 0x0000000000001C00 // {51'b0, 3'b1, 10'b0}
	resultRewardMask  = 0x00000000000003FF // {51'b0, 3'b0, 10'b1}
)

const (
	// MaxNodeID is the largest node id the 10-bit field can carry.
	MaxNodeID = 1<<nodeIDBits - 1
	// MaxConfigValue is the largest value of a config command.
	MaxConfigValue = 1<<cfgDataBits - 1
	// MaxNodeData is the largest parent, reward or weight magnitude.
	MaxNodeData = 1<<nodeDataBits - 1
	// MaxAction is the largest action id.
	MaxAction = 1<<actionBits - 1
	// MaxReward is the largest reward a result word can report.
	MaxReward = resultRewardMask
)

// Kind selects the command family from the top two bits.
type Kind uint8

const (
	KindRunComputation Kind = 0
	KindSetNodeData    Kind = 1
	KindSetConfigData  Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindRunComputation:
		return "run"
	case KindSetNodeData:
		return "node"
	case KindSetConfigData:
		return "config"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

type ConfigKind uint8

const (
	ConfigNodes ConfigKind = 0
)

func (c ConfigKind) String() string {
	if c == ConfigNodes {
		return "nodes"
	}
	return fmt.Sprintf("config(%d)", uint8(c))
}

// NodeField selects which attribute of a node a SetNodeData command updates.
type NodeField uint8

const (
	FieldParent NodeField = 0
	FieldAction NodeField = 1
	FieldReward NodeField = 2
	FieldWeight NodeField = 3
)

func (f NodeField) String() string {
	switch f {
	case FieldParent:
		return "parent"
	case FieldAction:
		return "action"
	case FieldReward:
		return "reward"
	case FieldWeight:
		return "weight"
	default:
		return fmt.Sprintf("field(%d)", uint8(f))
	}
}

// KindOf returns the command family of w without decoding the rest.
func KindOf(w Word) Kind {
	return Kind(uint64(w) & cmdMask >> cmdShift)
}
