package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"treeval/meta"
	"treeval/tree"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the document format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown tree document extension %q", filepath.Ext(path))
	}
}

// MalformedTreeError reports a document that does not describe a valid tree.
type MalformedTreeError struct {
	Path   string // Position of the offending node, e.g. "node.children[1].node"
	Reason string
	Err    error
}

func (e *MalformedTreeError) Error() string {
	msg := fmt.Sprintf("malformed tree at %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedTreeError) Unwrap() error {
	return e.Err
}

// document is one {"node": {...}} wrapper. Children are wrapped the same way.
type document struct {
	Node *nodeDocument `json:"node" yaml:"node"`
}

type nodeDocument struct {
	ID       *int       `json:"id" yaml:"id"`
	Val      float64    `json:"val" yaml:"val"`
	Weight   *float64   `json:"weight,omitempty" yaml:"weight,omitempty"`
	Children []document `json:"children,omitempty" yaml:"children,omitempty"`
}

// Load reads the tree document at path.
func Load(path string) (*tree.Tree, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree document: %w", err)
	}
	return Parse(data, format)
}

// Parse builds a tree from a document. A node without a weight gets weight 1.
func Parse(data []byte, format Format) (*tree.Tree, error) {
	var doc document
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unknown tree document format %q", format)
	}
	if err != nil {
		return nil, &MalformedTreeError{Path: "document", Reason: "syntax", Err: err}
	}

	if doc.Node == nil {
		return nil, &MalformedTreeError{Path: "document", Reason: `missing "node"`}
	}
	root, err := doc.Node.node("node")
	if err != nil {
		return nil, err
	}
	t, err := tree.New(root)
	if err != nil {
		return nil, &MalformedTreeError{Path: "node", Reason: "invalid root", Err: err}
	}
	if err := addChildren(t, tree.Root, doc.Node, "node"); err != nil {
		return nil, err
	}
	return t, nil
}

func addChildren(t *tree.Tree, parent tree.Index, d *nodeDocument, path string) error {
	for i, child := range d.Children {
		childPath := fmt.Sprintf("%s.children[%d].node", path, i)
		if child.Node == nil {
			return &MalformedTreeError{Path: childPath, Reason: `missing "node"`}
		}
		n, err := child.Node.node(childPath)
		if err != nil {
			return err
		}

		index, err := t.Add(parent, n)
		if errors.Is(err, tree.ErrTreeFull) {
			return &MalformedTreeError{Path: childPath, Reason: fmt.Sprintf("more than %d nodes", meta.MAX_NODES), Err: err}
		}
		if err != nil {
			return &MalformedTreeError{Path: childPath, Reason: "invalid node", Err: err}
		}
		if err := addChildren(t, index, child.Node, childPath); err != nil {
			return err
		}
	}
	return nil
}

func (d *nodeDocument) node(path string) (tree.Node, error) {
	if d.ID == nil {
		return tree.Node{}, &MalformedTreeError{Path: path, Reason: `missing "id"`}
	}
	if *d.ID < 0 || *d.ID >= meta.NUM_ACTIONS {
		return tree.Node{}, &MalformedTreeError{Path: path, Reason: fmt.Sprintf("id %d not in [0, %d)", *d.ID, meta.NUM_ACTIONS)}
	}

	n := tree.NewNodeWith(*d.ID, d.Val, 1)
	if d.Weight != nil {
		n.Weight = *d.Weight
	}
	return n, nil
}

// Marshal renders t as a document in the given format.
func Marshal(t *tree.Tree, format Format) ([]byte, error) {
	doc := document{Node: toDocument(t, tree.Root)}
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unknown tree document format %q", format)
	}
}

func toDocument(t *tree.Tree, i tree.Index) *nodeDocument {
	n := t.Node(i)
	id, weight := n.Action, n.Weight
	d := &nodeDocument{ID: &id, Val: n.Payoff, Weight: &weight}
	for _, child := range t.Children(i) {
		d.Children = append(d.Children, document{Node: toDocument(t, child)})
	}
	return d
}
