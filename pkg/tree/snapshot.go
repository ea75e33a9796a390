package tree

import (
	"fmt"

	"github.com/aretw0/fieldform/pkg/domain"
)

// Snapshot is the serializable form of a DataTree.
type Snapshot struct {
	SessionID string         `json:"session_id"`
	FormID    int            `json:"form_id"`
	Nodes     []NodeSnapshot `json:"nodes"`

	// Sealed holds the encrypted form of Nodes when a store encrypts at rest.
	Sealed string `json:"sealed,omitempty"`
}

// NodeSnapshot is the serializable form of a Node.
type NodeSnapshot struct {
	Path   string          `json:"path"`
	Fields []FieldSnapshot `json:"fields,omitempty"`
}

// FieldSnapshot is the serializable form of a FieldValue.
type FieldSnapshot struct {
	DefinitionID int                 `json:"definition_id"`
	Multiple     bool                `json:"multiple,omitempty"`
	Arity        int                 `json:"arity"`
	Values       []domain.ValueTuple `json:"values"`
}

// Export captures every node in deterministic order.
func (t *DataTree) Export() []NodeSnapshot {
	out := make([]NodeSnapshot, 0, len(t.nodes))
	for _, key := range t.Keys() {
		n := t.nodes[key]
		ns := NodeSnapshot{Path: key}
		for _, f := range n.Fields() {
			ns.Fields = append(ns.Fields, FieldSnapshot{
				DefinitionID: f.DefinitionID,
				Multiple:     f.Multiple,
				Arity:        f.Arity,
				Values:       f.Values(),
			})
		}
		out = append(out, ns)
	}
	return out
}

// Restore rebuilds a tree from node snapshots.
func Restore(nodes []NodeSnapshot) (*DataTree, error) {
	t := New()
	for _, ns := range nodes {
		path, err := domain.ParseInstancePath(ns.Path)
		if err != nil {
			return nil, fmt.Errorf("restore node: %w", err)
		}
		n, _ := t.GetOrCreate(path)
		for _, fs := range ns.Fields {
			n.fields[fs.DefinitionID] = &FieldValue{
				DefinitionID: fs.DefinitionID,
				Path:         n.Path,
				Multiple:     fs.Multiple,
				Arity:        fs.Arity,
				values:       resizeAll(fs.Values, fs.Arity),
			}
		}
	}
	return t, nil
}

func resizeAll(values []domain.ValueTuple, arity int) []domain.ValueTuple {
	out := make([]domain.ValueTuple, len(values))
	for i, v := range values {
		out[i] = v.Resize(arity)
	}
	return out
}
