package codec

import "fmt"

// Decode turns a command word back into its Command. Words that no encoder
// can produce are rejected.
func Decode(w Word) (Command, error) {
	u := uint64(w)
	switch kind := Kind(u & cmdMask >> cmdShift); kind {
	case KindRunComputation:
		if u&^cmdMask != 0 {
			return nil, fmt.Errorf("%w: run command %s carries a payload", ErrMalformedWord, w)
		}
		return RunComputation{}, nil

	case KindSetConfigData:
		c := ConfigKind(u & cfgMask >> cfgShift)
		if c != ConfigNodes {
			return nil, fmt.Errorf("%w: config command %d in %s", ErrUnknownCommand, uint8(c), w)
		}
		return SetConfigData{Config: c, Value: u & cfgDataMask}, nil

	case KindSetNodeData:
		cmd := SetNodeData{
			Node:  u & nodeIDMask >> nodeIDShift,
			Field: NodeField(u & nodeCmdMask >> nodeCmdShift),
			Data:  u & nodeDataMask,
		}
		if cmd.Field == FieldAction && cmd.Data > actionDataMax {
			return nil, fmt.Errorf("%w: action data of %s uses unused bits", ErrMalformedWord, w)
		}
		return cmd, nil

	default:
		return nil, fmt.Errorf("%w: %d in %s", ErrUnknownCommand, uint8(kind), w)
	}
}

// Result is the accelerator's answer: the optimal action at the root and the
// expected reward.
type Result struct {
	Action uint8
	Reward uint16
}

// DecodeResult extracts action and reward from a result word. Every bit
// pattern decodes to some result.
func DecodeResult(w Word) Result {
	u := uint64(w)
	return Result{
		Action: uint8(u & resultActionMask >> resultActionShift),
		Reward: uint16(u & resultRewardMask),
	}
}

// EncodeResult builds a result word. Bits beyond the 3-bit action and the
// 10-bit reward are dropped, as the accelerator's output register does.
func EncodeResult(action uint8, reward uint64) Word {
	u := uint64(action) << resultActionShift & resultActionMask
	u |= reward & resultRewardMask
	return Word(u)
}
