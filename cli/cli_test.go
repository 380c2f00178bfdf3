package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"treeval/config"
)

const betJSON = `{"node": {"id": 0, "val": 0, "children": [
  {"node": {"id": 1, "val": 10}},
  {"node": {"id": 1, "val": -5}},
  {"node": {"id": 2, "val": 3}}
]}}`

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTree(t *testing.T, data string) string {
	path := filepath.Join(t.TempDir(), "bet.json")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestEval(t *testing.T) {
	t.Run("printing value and action", func(t *testing.T) {
		out, err := run(t, "eval", writeTree(t, betJSON))
		require.NoError(t, err)
		require.Equal(t, "nodes: 4\nvalue: 5\naction: 1\n", out)
	})

	t.Run("reporting a malformed document", func(t *testing.T) {
		_, err := run(t, "eval", writeTree(t, `{"node": {"id": 9}}`))
		require.ErrorContains(t, err, "malformed tree at node")
	})
}

func TestEncode(t *testing.T) {
	t.Run("dumping every word in order", func(t *testing.T) {
		out, err := run(t, "encode", writeTree(t, `{"node": {"id": 0, "val": 0, "children": [{"node": {"id": 3, "val": 7}}]}}`))
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 11)
		require.Equal(t, "0x8000000000000001  config nodes=1", lines[0])
		require.Equal(t, "0x4000000000000000  node 0 parent=0", lines[1])
		require.Equal(t, "0x4018000000000007  node 1 reward=7", lines[7])
		require.Equal(t, "0x401400000000000b  node 1 action=3 maximize", lines[8])
		require.Equal(t, "0x0000000000000000  run", lines[10])
	})

	t.Run("refusing a negative payoff", func(t *testing.T) {
		_, err := run(t, "encode", writeTree(t, betJSON))
		require.ErrorContains(t, err, "node 2: reward -5 out of range")
	})
}

func TestOffload(t *testing.T) {
	tree := `{"node": {"id": 0, "val": 0, "children": [{"node": {"id": 4, "val": 9, "weight": 2}}]}}`

	t.Run("using the built-in accelerator model", func(t *testing.T) {
		out, err := run(t, "offload", writeTree(t, tree))
		require.NoError(t, err)
		require.Equal(t, "accelerator: action 4 reward 18\nsoftware:    action 4 value 18\n", out)
	})

	t.Run("using a remote accelerator", func(t *testing.T) {
		srv := httptest.NewServer(newRouter(config.Default(), prometheus.NewRegistry()))
		defer srv.Close()
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/accelerator"

		out, err := run(t, "offload", "--remote", url, writeTree(t, tree))
		require.NoError(t, err)
		require.Contains(t, out, "accelerator: action 4 reward 18\n")
	})
}

func TestServe(t *testing.T) {
	t.Run("exposing health and metrics", func(t *testing.T) {
		srv := httptest.NewServer(newRouter(config.Default(), prometheus.NewRegistry()))
		defer srv.Close()

		for _, path := range []string{"/healthz", "/metrics"} {
			resp, err := srv.Client().Get(srv.URL + path)
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, 200, resp.StatusCode, path)
		}
	})

	t.Run("stopping on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cmd := NewRootCommand()
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "serve", "--addr", "127.0.0.1:0"})

		done := make(chan error, 1)
		go func() { done <- cmd.ExecuteContext(ctx) }()
		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("serve did not stop")
		}
	})
}

func TestGenerateAndBench(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "random.yaml")

	_, err := run(t, "generate", "--size", "30", "--seed", "7", "--output", path)
	require.NoError(t, err)
	out, err := run(t, "eval", path)
	require.NoError(t, err)
	require.Contains(t, out, "nodes: 30\n")

	cfgPath := filepath.Join(dir, "treeval.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("bench:\n  sizes: [4, 16]\n  repeats: 2\n  out_dir: "+dir+"\n"), 0644))
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--config", cfgPath, "bench"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.Contains(t, buf.String(), "trees: 4\nmismatches: 0\n")
}
