package ports

import "github.com/aretw0/fieldform/pkg/domain"

// Metamodel exposes the externally defined survey schema. Implementations never
// mutate definitions after construction.
type Metamodel interface {
	// Root returns the form root entity definition.
	Root() *domain.NodeDefinition

	// Definition looks up any definition by id.
	Definition(id int) (*domain.NodeDefinition, bool)
}
