package codec

// Every encoder returns a word whose bits outside the command's fields are
// zero. Inputs wider than their field are rejected with an
// *EncodingRangeError instead of spilling into neighbouring fields.

// EncodeRun launches the computation.
func EncodeRun() Word {
	return Word(uint64(KindRunComputation) << cmdShift & cmdMask)
}

// EncodeConfigNodes sets the number of nodes in the tree. It may be sent
// several times while a tree is being built to raise the count.
func EncodeConfigNodes(n uint64) (Word, error) {
	if n > MaxConfigValue {
		return 0, &EncodingRangeError{Node: NoNode, Field: "nodes config", Value: n, Limit: MaxConfigValue}
	}
	return config(ConfigNodes, n), nil
}

// EncodeParent adds node to the tree below parent.
func EncodeParent(node, parent uint64) (Word, error) {
	return encodeMagnitude(node, FieldParent, parent)
}

func EncodeReward(node, reward uint64) (Word, error) {
	return encodeMagnitude(node, FieldReward, reward)
}

func EncodeWeight(node, weight uint64) (Word, error) {
	return encodeMagnitude(node, FieldWeight, weight)
}

// EncodeAction sets the action of node and whether its expected reward is
// maximized (true) or minimized (false).
func EncodeAction(node uint64, maximize bool, action uint64) (Word, error) {
	if err := checkNode(node); err != nil {
		return 0, err
	}
	if action > MaxAction {
		return 0, rangeError(node, FieldAction.String(), action, MaxAction)
	}
	return nodeData(node, FieldAction, ActionData(maximize, uint8(action))), nil
}

// ActionData packs the strategy flag and the action into an action payload.
func ActionData(maximize bool, action uint8) uint64 {
	var data uint64
	if maximize {
		data = 1 << stratShift & stratMask
	}
	return data | uint64(action)&actionMask
}

func encodeMagnitude(node uint64, f NodeField, value uint64) (Word, error) {
	if err := checkNode(node); err != nil {
		return 0, err
	}
	if value > MaxNodeData {
		return 0, rangeError(node, f.String(), value, MaxNodeData)
	}
	return nodeData(node, f, value), nil
}

func checkNode(node uint64) error {
	if node > MaxNodeID {
		return &EncodingRangeError{Node: NoNode, Field: "node id", Value: node, Limit: MaxNodeID}
	}
	return nil
}

func config(c ConfigKind, value uint64) Word {
	w := uint64(KindSetConfigData) << cmdShift & cmdMask
	w |= uint64(c) << cfgShift & cfgMask
	w |= value & cfgDataMask
	return Word(w)
}

func nodeData(node uint64, f NodeField, data uint64) Word {
	w := uint64(KindSetNodeData) << cmdShift & cmdMask
	w |= node << nodeIDShift & nodeIDMask
	w |= uint64(f) << nodeCmdShift & nodeCmdMask
	w |= data & nodeDataMask
	return Word(w)
}
