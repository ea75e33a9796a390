package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/ports"
	"github.com/aretw0/fieldform/pkg/tree"
)

// Mask replaces every set component of a redacted field.
const Mask = "***"

type piiMiddleware struct {
	next      ports.SnapshotStore
	sensitive map[int]bool
}

// NewPIIMiddleware creates a middleware that masks the persisted values of
// attributes whose definition name matches any of the patterns. The live
// session keeps the real values; only what reaches the store is masked.
func NewPIIMiddleware(schema ports.Metamodel, patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, 0, len(patternStrings))
	for _, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pii pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	sensitive := make(map[int]bool)
	var walk func(d *domain.NodeDefinition)
	walk = func(d *domain.NodeDefinition) {
		if !d.IsEntity() {
			for _, re := range patterns {
				if re.MatchString(d.Name) {
					sensitive[d.ID] = true
					break
				}
			}
		}
		for _, c := range d.Children {
			walk(c)
		}
	}
	walk(schema.Root())

	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &piiMiddleware{next: next, sensitive: sensitive}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, snapshot *tree.Snapshot) error {
	masked := *snapshot
	masked.Nodes = make([]tree.NodeSnapshot, len(snapshot.Nodes))
	for i, n := range snapshot.Nodes {
		masked.Nodes[i] = tree.NodeSnapshot{Path: n.Path, Fields: make([]tree.FieldSnapshot, len(n.Fields))}
		for j, f := range n.Fields {
			masked.Nodes[i].Fields[j] = m.mask(f)
		}
	}
	return m.next.Save(ctx, sessionID, &masked)
}

func (m *piiMiddleware) mask(f tree.FieldSnapshot) tree.FieldSnapshot {
	out := f
	out.Values = make([]domain.ValueTuple, len(f.Values))
	for i, t := range f.Values {
		if !m.sensitive[f.DefinitionID] {
			out.Values[i] = t.Clone()
			continue
		}
		masked := domain.NewTuple(len(t))
		for c := range t {
			if t[c] != nil {
				masked[c] = domain.Str(Mask)
			}
		}
		out.Values[i] = masked
	}
	return out
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*tree.Snapshot, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
