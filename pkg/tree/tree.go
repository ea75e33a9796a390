package tree

import (
	"sort"
	"strings"

	"github.com/aretw0/fieldform/pkg/domain"
)

// DataTree is the session-scoped map from path key to node.
type DataTree struct {
	nodes map[string]*Node
}

// New creates an empty tree.
func New() *DataTree {
	return &DataTree{nodes: make(map[string]*Node)}
}

// Get looks up a node by path.
func (t *DataTree) Get(path domain.ScreenPath) (*Node, bool) {
	n, ok := t.nodes[path.String()]
	return n, ok
}

// GetOrCreate returns the node at path, creating it and any missing ancestors.
// The boolean reports whether the node already existed.
func (t *DataTree) GetOrCreate(path domain.ScreenPath) (*Node, bool) {
	key := path.String()
	if n, ok := t.nodes[key]; ok {
		return n, true
	}
	if parent := path.Parent(); parent != nil {
		t.GetOrCreate(parent)
	}
	n := newNode(append(domain.ScreenPath(nil), path...))
	t.nodes[key] = n
	return n, false
}

// Parent resolves a node's parent through the tree.
func (t *DataTree) Parent(n *Node) (*Node, bool) {
	if n.parentKey == "" {
		return nil, false
	}
	p, ok := t.nodes[n.parentKey]
	return p, ok
}

// Children returns the direct children of path created for definitionID,
// sorted by instance index.
func (t *DataTree) Children(path domain.ScreenPath, definitionID int) []*Node {
	parentKey := path.String()
	var out []*Node
	for _, n := range t.nodes {
		if n.parentKey == parentKey && n.DefinitionID == definitionID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Len is the number of nodes.
func (t *DataTree) Len() int {
	return len(t.nodes)
}

// Nodes returns every node in Keys order.
func (t *DataTree) Nodes() []*Node {
	keys := t.Keys()
	out := make([]*Node, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.nodes[k])
	}
	return out
}

// Keys returns every node key sorted lexically by segment.
func (t *DataTree) Keys() []string {
	keys := make([]string, 0, len(t.nodes))
	for k := range t.nodes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return lessPath(t.nodes[keys[i]].Path, t.nodes[keys[j]].Path)
	})
	return keys
}

func lessPath(a, b domain.ScreenPath) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].DefinitionID != b[i].DefinitionID {
			return a[i].DefinitionID < b[i].DefinitionID
		}
		if a[i].Index != b[i].Index {
			return a[i].Index < b[i].Index
		}
	}
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return strings.Compare(a.String(), b.String()) < 0
}
