package ports

import "github.com/aretw0/fieldform/pkg/domain"

// Record is the persistent, typed Entity/Attribute tree filled in by a session.
// The engine never owns record nodes; it only triggers typed writes.
type Record interface {
	Root() Entity
}

// RecordNode is any node of the record tree.
type RecordNode interface {
	Name() string
	Index() int
}

// Entity groups child entities and attributes by name.
type Entity interface {
	RecordNode

	// FindChild returns the index-th child named name.
	FindChild(name string, index int) (RecordNode, bool)

	// AddEntity inserts a child entity at index.
	AddEntity(name string, index int) (Entity, error)

	// AddValue inserts an attribute holding value at index.
	AddValue(name string, value domain.Value, index int) (Attribute, error)

	// Count is the number of children named name.
	Count(name string) int
}

// Attribute holds a single typed value.
type Attribute interface {
	RecordNode
	Value() domain.Value
	SetValue(value domain.Value) error
}
