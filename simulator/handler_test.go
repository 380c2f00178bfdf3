package simulator

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"treeval/codec"
	"treeval/transport"
)

func TestHandler(t *testing.T) {
	srv := httptest.NewServer(Handler())
	defer srv.Close()
	ctx := context.Background()

	s, err := transport.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	defer s.Close()

	// Two sessions on one connection
	for _, reward := range []uint64{3, 900} {
		cmds := append([]codec.Command{config(1)}, node(0, 0, reward, 1, 0)...)
		cmds = append(cmds, codec.RunComputation{})
		for _, w := range words(t, cmds...) {
			require.NoError(t, s.Send(ctx, w))
		}

		got, err := s.Receive(ctx)
		require.NoError(t, err)
		require.Equal(t, uint16(reward), codec.DecodeResult(got).Reward)
	}

	require.NoError(t, s.Send(ctx, words(t, codec.RunComputation{})[0]))
	_, err = s.Receive(ctx)
	require.ErrorIs(t, err, transport.ErrDeviceFault)
	require.Contains(t, err.Error(), "incomplete tree")
}
