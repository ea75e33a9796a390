package memory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/ports"
)

// ErrSlotTaken is returned when a child is inserted at an index that is already used.
var ErrSlotTaken = errors.New("record slot already taken")

// Record is an in-memory Entity/Attribute tree implementing ports.Record.
// Children are stored sparsely by index, so an attribute instance can be
// written before lower instances that are still empty.
type Record struct {
	mu   sync.Mutex
	root *Entity
}

// NewRecord creates a record whose root entity is named rootName.
func NewRecord(rootName string) *Record {
	r := &Record{}
	r.root = newEntity(r, rootName, 0)
	return r
}

// Root returns the root entity.
func (r *Record) Root() ports.Entity {
	return r.root
}

// Dump renders the record as nested maps for inspection and JSON output.
// Multiple children appear as index-keyed maps.
func (r *Record) Dump() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.root.dump()
}

// Entity is a record node grouping children by name.
type Entity struct {
	record   *Record
	name     string
	index    int
	children map[string]map[int]ports.RecordNode
}

func newEntity(r *Record, name string, index int) *Entity {
	return &Entity{
		record:   r,
		name:     name,
		index:    index,
		children: make(map[string]map[int]ports.RecordNode),
	}
}

func (e *Entity) Name() string { return e.name }
func (e *Entity) Index() int   { return e.index }

func (e *Entity) FindChild(name string, index int) (ports.RecordNode, bool) {
	e.record.mu.Lock()
	defer e.record.mu.Unlock()
	n, ok := e.children[name][index]
	return n, ok
}

func (e *Entity) AddEntity(name string, index int) (ports.Entity, error) {
	child := newEntity(e.record, name, index)
	if err := e.insert(name, index, child); err != nil {
		return nil, err
	}
	return child, nil
}

func (e *Entity) AddValue(name string, value domain.Value, index int) (ports.Attribute, error) {
	if value == nil {
		return nil, fmt.Errorf("add %s[%d]: nil value", name, index)
	}
	attr := &Attribute{record: e.record, name: name, index: index, value: value}
	if err := e.insert(name, index, attr); err != nil {
		return nil, err
	}
	return attr, nil
}

func (e *Entity) Count(name string) int {
	e.record.mu.Lock()
	defer e.record.mu.Unlock()
	return len(e.children[name])
}

func (e *Entity) insert(name string, index int, node ports.RecordNode) error {
	if index < 0 {
		return fmt.Errorf("add %s[%d]: negative index", name, index)
	}
	e.record.mu.Lock()
	defer e.record.mu.Unlock()

	slots, ok := e.children[name]
	if !ok {
		slots = make(map[int]ports.RecordNode)
		e.children[name] = slots
	}
	if _, taken := slots[index]; taken {
		return fmt.Errorf("%w: %s[%d]", ErrSlotTaken, name, index)
	}
	slots[index] = node
	return nil
}

func (e *Entity) dump() map[string]any {
	out := make(map[string]any, len(e.children))
	for name, slots := range e.children {
		indexes := make([]int, 0, len(slots))
		for i := range slots {
			indexes = append(indexes, i)
		}
		sort.Ints(indexes)

		values := make(map[int]any, len(slots))
		for _, i := range indexes {
			switch n := slots[i].(type) {
			case *Entity:
				values[i] = n.dump()
			case *Attribute:
				values[i] = n.value.String()
			}
		}
		if len(values) == 1 && indexes[0] == 0 {
			out[name] = values[0]
			continue
		}
		out[name] = values
	}
	return out
}

// Attribute is a record leaf holding one typed value.
type Attribute struct {
	record *Record
	name   string
	index  int
	value  domain.Value
}

func (a *Attribute) Name() string { return a.name }
func (a *Attribute) Index() int   { return a.index }

func (a *Attribute) Value() domain.Value {
	a.record.mu.Lock()
	defer a.record.mu.Unlock()
	return a.value
}

func (a *Attribute) SetValue(value domain.Value) error {
	if value == nil {
		return fmt.Errorf("set %s[%d]: nil value", a.name, a.index)
	}
	a.record.mu.Lock()
	defer a.record.mu.Unlock()
	a.value = value
	return nil
}
