package tree

import (
	"sort"

	"github.com/aretw0/fieldform/pkg/domain"
)

// Node is the cached state of one entity instance.
type Node struct {
	Path         domain.ScreenPath
	DefinitionID int
	Index        int

	// parentKey refers back to the parent through the tree; the node never
	// owns its parent.
	parentKey string
	fields    map[int]*FieldValue
}

func newNode(path domain.ScreenPath) *Node {
	last := path.Last()
	n := &Node{
		Path:         path,
		DefinitionID: last.DefinitionID,
		Index:        last.Index,
		fields:       make(map[int]*FieldValue),
	}
	if parent := path.Parent(); parent != nil {
		n.parentKey = parent.String()
	}
	return n
}

// Key is the node's identity in the tree.
func (n *Node) Key() string {
	return n.Path.String()
}

// ParentKey is empty for the root node.
func (n *Node) ParentKey() string {
	return n.parentKey
}

// Field returns the field value for an attribute definition, if materialized.
func (n *Node) Field(definitionID int) (*FieldValue, bool) {
	f, ok := n.fields[definitionID]
	return f, ok
}

// FieldOrCreate returns the field value for def, creating it on first use.
// The boolean reports whether it already existed.
func (n *Node) FieldOrCreate(def *domain.NodeDefinition, arity int) (*FieldValue, bool) {
	if f, ok := n.fields[def.ID]; ok {
		return f, true
	}
	f := NewFieldValue(n.Path, def, arity)
	n.fields[def.ID] = f
	return f, false
}

// Fields returns the materialized field values sorted by definition id.
func (n *Node) Fields() []*FieldValue {
	out := make([]*FieldValue, 0, len(n.fields))
	for _, f := range n.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DefinitionID < out[j].DefinitionID })
	return out
}
