package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"treeval/tree"
)

const betJSON = `{
  "node": {
    "id": 0, "val": 0, "weight": 1,
    "children": [
      {"node": {"id": 1, "val": 10, "weight": 1}},
      {"node": {"id": 1, "val": -5}},
      {"node": {"id": 2, "val": 3, "weight": 0.5, "children": [
        {"node": {"id": 0, "val": 4, "weight": 2}}
      ]}}
    ]
  }
}`

const betYAML = `
node:
  id: 0
  val: 0
  children:
    - node: {id: 1, val: 10, weight: 1}
    - node: {id: 1, val: -5}
    - node:
        id: 2
        val: 3
        weight: 0.5
        children:
          - node: {id: 0, val: 4, weight: 2}
`

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		format Format
		data   string
	}{
		{FormatJSON, betJSON},
		{FormatYAML, betYAML},
	} {
		t.Run("building the tree from "+string(tc.format), func(t *testing.T) {
			tr, err := Parse([]byte(tc.data), tc.format)
			require.NoError(t, err)

			require.Equal(t, 5, tr.Len())
			require.Equal(t, tree.NewNodeWith(1, -5, 1), tr.Node(2), "Missing weight should default to 1")
			require.Equal(t, []tree.Index{4}, tr.Children(3))
			require.Equal(t, 5.0, tr.Evaluate())
		})
	}
}

func TestParseMalformed(t *testing.T) {
	cases := []struct {
		name   string
		data   string
		path   string
		reason string
	}{
		{"syntax error", `{"node": `, "document", "syntax"},
		{"missing root", `{"tree": {}}`, "document", `missing "node"`},
		{"missing id", `{"node": {"val": 1}}`, "node", `missing "id"`},
		{"action out of range", `{"node": {"id": 0, "children": [{"node": {"id": 8}}]}}`, "node.children[0].node", "id 8 not in [0, 8)"},
		{"child without node", `{"node": {"id": 0, "children": [{"node": {"id": 1}}, {}]}}`, "node.children[1].node", `missing "node"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data), FormatJSON)

			var malformed *MalformedTreeError
			require.True(t, errors.As(err, &malformed))
			require.Equal(t, tc.path, malformed.Path)
			require.Equal(t, tc.reason, malformed.Reason)
		})
	}

	t.Run("too many nodes", func(t *testing.T) {
		children := strings.Repeat(`{"node": {"id": 0}},`, 1024)
		data := `{"node": {"id": 0, "children": [` + strings.TrimSuffix(children, ",") + `]}}`

		_, err := Parse([]byte(data), FormatJSON)

		var malformed *MalformedTreeError
		require.True(t, errors.As(err, &malformed))
		require.Equal(t, "node.children[1023].node", malformed.Path)
		require.ErrorIs(t, err, tree.ErrTreeFull)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("choosing the format by extension", func(t *testing.T) {
		for name, data := range map[string]string{"bet.json": betJSON, "bet.yml": betYAML} {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(data), 0644))

			tr, err := Load(path)
			require.NoError(t, err)
			require.Equal(t, 5, tr.Len())
		}
	})

	t.Run("rejecting an unknown extension", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "bet.txt"))
		require.ErrorContains(t, err, "unknown tree document extension")
	})
}

func TestMarshal(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	original, err := tree.Random(rng, 40, tree.WithMaxWeight(3))
	require.NoError(t, err)

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run("reloading a "+string(format)+" document", func(t *testing.T) {
			data, err := Marshal(original, format)
			require.NoError(t, err)

			loaded, err := Parse(data, format)
			require.NoError(t, err)

			require.Equal(t, original.Len(), loaded.Len())
			require.Equal(t, original.Evaluate(), loaded.Evaluate())
		})
	}
}
