package schema

import (
	"github.com/aretw0/fieldform/pkg/domain"
)

// Model is an immutable, validated metamodel.
type Model struct {
	root *domain.NodeDefinition
	byID map[int]*domain.NodeDefinition
}

// New validates root and indexes every definition by id.
func New(root *domain.NodeDefinition) (*Model, error) {
	if err := Validate(root); err != nil {
		return nil, err
	}
	m := &Model{root: root, byID: make(map[int]*domain.NodeDefinition)}
	var index func(def *domain.NodeDefinition)
	index = func(def *domain.NodeDefinition) {
		m.byID[def.ID] = def
		for _, c := range def.Children {
			index(c)
		}
	}
	index(root)
	return m, nil
}

// Root returns the form root entity.
func (m *Model) Root() *domain.NodeDefinition {
	return m.root
}

// Definition looks up a definition by id.
func (m *Model) Definition(id int) (*domain.NodeDefinition, bool) {
	def, ok := m.byID[id]
	return def, ok
}

// Len is the number of definitions, root included.
func (m *Model) Len() int {
	return len(m.byID)
}
