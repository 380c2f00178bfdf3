package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeLayout(t *testing.T) {
	t.Run("run computation is all zeros", func(t *testing.T) {
		require.Equal(t, Word(0), EncodeRun())
	})

	t.Run("config nodes", func(t *testing.T) {
		w, err := EncodeConfigNodes(5)
		require.NoError(t, err)
		require.Equal(t, Word(0x8000000000000005), w)
	})

	t.Run("node fields", func(t *testing.T) {
		parent, err := EncodeParent(3, 1)
		require.NoError(t, err)
		require.Equal(t, Word(0x4030000000000001), parent)

		reward, err := EncodeReward(5, 7)
		require.NoError(t, err)
		require.Equal(t, Word(0x4058000000000007), reward)

		weight, err := EncodeWeight(1023, MaxNodeData)
		require.NoError(t, err)
		require.Equal(t, Word(0x7FFFFFFFFFFFFFFF), weight)
	})

	t.Run("action packs strategy at bit 3 and action in the low bits", func(t *testing.T) {
		w, err := EncodeAction(2, true, 6)
		require.NoError(t, err)
		require.Equal(t, Word(0x402400000000000E), w)

		w, err = EncodeAction(2, false, 6)
		require.NoError(t, err)
		require.Equal(t, Word(0x4024000000000006), w)
	})
}

func TestEncodeRange(t *testing.T) {
	t.Run("rejecting node ids wider than 10 bits", func(t *testing.T) {
		_, err := EncodeReward(MaxNodeID+1, 1)

		var rangeErr *EncodingRangeError
		require.ErrorAs(t, err, &rangeErr)
		require.Equal(t, NoNode, rangeErr.Node)
		require.Equal(t, "node id", rangeErr.Field)
		require.Equal(t, uint64(MaxNodeID+1), rangeErr.Value)
		require.True(t, errors.Is(err, ErrEncodingRange))
	})

	t.Run("rejecting magnitudes wider than 50 bits", func(t *testing.T) {
		for _, encode := range []func(uint64, uint64) (Word, error){EncodeParent, EncodeReward, EncodeWeight} {
			_, err := encode(9, MaxNodeData+1)

			var rangeErr *EncodingRangeError
			require.ErrorAs(t, err, &rangeErr)
			require.Equal(t, 9, rangeErr.Node)
			require.Equal(t, uint64(MaxNodeData), rangeErr.Limit)
		}
	})

	t.Run("rejecting actions wider than 3 bits", func(t *testing.T) {
		_, err := EncodeAction(1, true, 8)

		var rangeErr *EncodingRangeError
		require.ErrorAs(t, err, &rangeErr)
		require.Equal(t, "action", rangeErr.Field)
		require.Contains(t, err.Error(), "node 1: action 8")
	})

	t.Run("rejecting config values wider than 60 bits", func(t *testing.T) {
		_, err := EncodeConfigNodes(MaxConfigValue + 1)
		require.ErrorIs(t, err, ErrEncodingRange)
	})

	t.Run("rejecting action payloads with stray bits", func(t *testing.T) {
		_, err := SetNodeData{Node: 1, Field: FieldAction, Data: 0x10}.Encode()
		require.ErrorIs(t, err, ErrEncodingRange)
	})
}

func TestNodeDataRoundTrip(t *testing.T) {
	nodes := []uint64{0, 1, 5, 512, MaxNodeID}
	payloads := []uint64{0, 1, 7, 1023, 1 << 40, MaxNodeData}
	fields := []NodeField{FieldParent, FieldReward, FieldWeight}

	for _, node := range nodes {
		for _, field := range fields {
			for _, payload := range payloads {
				want := SetNodeData{Node: node, Field: field, Data: payload}
				w, err := want.Encode()
				require.NoError(t, err)

				got, err := Decode(w)
				require.NoError(t, err)
				require.Equal(t, want, got, "Decoding %s should recover the command", w)
			}
		}
	}
}

func TestActionRoundTrip(t *testing.T) {
	for action := uint64(0); action <= MaxAction; action++ {
		for _, maximize := range []bool{true, false} {
			w, err := EncodeAction(MaxNodeID, maximize, action)
			require.NoError(t, err)

			cmd, err := Decode(w)
			require.NoError(t, err)
			node := cmd.(SetNodeData)
			gotMaximize, gotAction := node.Action()

			require.Equal(t, FieldAction, node.Field)
			require.Equal(t, uint64(MaxNodeID), node.Node)
			require.Equal(t, maximize, gotMaximize, "Strategy flag should not bleed into the action")
			require.Equal(t, uint8(action), gotAction, "Action should not bleed into the strategy flag")
		}
	}
}

func TestDecode(t *testing.T) {
	t.Run("reward scenario", func(t *testing.T) {
		w, err := EncodeReward(5, 7)
		require.NoError(t, err)

		cmd, err := Decode(w)
		require.NoError(t, err)
		require.Equal(t, SetNodeData{Node: 5, Field: FieldReward, Data: 7}, cmd)
	})

	t.Run("config and run commands", func(t *testing.T) {
		w, err := EncodeConfigNodes(MaxConfigValue)
		require.NoError(t, err)
		cmd, err := Decode(w)
		require.NoError(t, err)
		require.Equal(t, SetConfigData{Config: ConfigNodes, Value: MaxConfigValue}, cmd)

		cmd, err = Decode(EncodeRun())
		require.NoError(t, err)
		require.Equal(t, RunComputation{}, cmd)
	})

	t.Run("rejecting the unused command kind", func(t *testing.T) {
		_, err := Decode(Word(0xC000000000000000))
		require.ErrorIs(t, err, ErrUnknownCommand)
	})

	t.Run("rejecting unknown config commands", func(t *testing.T) {
		_, err := Decode(Word(0x9000000000000001))
		require.ErrorIs(t, err, ErrUnknownCommand)
	})

	t.Run("rejecting a run command with a payload", func(t *testing.T) {
		_, err := Decode(Word(0x1))
		require.ErrorIs(t, err, ErrMalformedWord)
	})
}

func TestResult(t *testing.T) {
	t.Run("decoding reward and action", func(t *testing.T) {
		require.Equal(t, Result{Action: 5, Reward: 300}, DecodeResult(Word(5<<10|300)))
	})

	t.Run("ignoring unused bits", func(t *testing.T) {
		require.Equal(t, Result{Action: 7, Reward: 1023}, DecodeResult(Word(0xFFFFFFFFFFFFFFFF)))
	})

	t.Run("encoding truncates to the register width", func(t *testing.T) {
		w := EncodeResult(3, 1024+9)
		require.Equal(t, Result{Action: 3, Reward: 9}, DecodeResult(w))
		require.Equal(t, uint64(0), uint64(w)&^0x1FFF, "Bits above the result fields should be zero")
	})
}

func TestCommandString(t *testing.T) {
	require.Equal(t, "run", RunComputation{}.String())
	require.Equal(t, "config nodes=4", SetConfigData{Value: 4}.String())
	require.Equal(t, "node 2 reward=9", SetNodeData{Node: 2, Field: FieldReward, Data: 9}.String())
	require.Equal(t, "node 2 action=3 maximize", SetNodeData{Node: 2, Field: FieldAction, Data: ActionData(true, 3)}.String())
	require.Equal(t, "0x8000000000000004", mustEncode(t, SetConfigData{Value: 4}).String())
}

func mustEncode(t *testing.T, c Command) Word {
	w, err := c.Encode()
	require.NoError(t, err)
	return w
}
