package domain

import "fmt"

// Kind is the closed set of node definition kinds.
type Kind string

const (
	KindBoolean    Kind = "boolean"
	KindCode       Kind = "code"
	KindNumber     Kind = "number"
	KindRange      Kind = "range"
	KindCoordinate Kind = "coordinate"
	KindDate       Kind = "date"
	KindTime       Kind = "time"
	KindText       Kind = "text"
	KindMemo       Kind = "memo"
	KindEntity     Kind = "entity"
)

// Kinds lists every kind, attribute kinds first.
var Kinds = []Kind{
	KindBoolean, KindCode, KindNumber, KindRange, KindCoordinate,
	KindDate, KindTime, KindText, KindMemo, KindEntity,
}

// ParseKind validates a kind name coming from a schema source.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

// NumberType distinguishes integer from real numeric attributes.
type NumberType string

const (
	NumberInteger NumberType = "integer"
	NumberReal    NumberType = "real"
)

// CodeItem is one entry of a code list.
type CodeItem struct {
	Code  string `json:"code" yaml:"code" mapstructure:"code"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
}

// NodeDefinition describes one attribute or entity type. It is never mutated
// once the metamodel has been built.
type NodeDefinition struct {
	ID       int    `json:"id" yaml:"id,omitempty"`
	Name     string `json:"name" yaml:"name"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Help     string `json:"help,omitempty" yaml:"help,omitempty"`
	Kind     Kind   `json:"kind" yaml:"kind"`
	Multiple bool   `json:"multiple,omitempty" yaml:"multiple,omitempty"`

	// Key marks attributes used to label entity instances in summary lists.
	Key bool `json:"key,omitempty" yaml:"key,omitempty"`

	// NumberType applies to number and range kinds. Defaults to real.
	NumberType NumberType `json:"number_type,omitempty" yaml:"number_type,omitempty"`

	// SRS is the spatial reference system id of coordinate attributes.
	SRS string `json:"srs,omitempty" yaml:"srs,omitempty"`

	CodeItems []CodeItem        `json:"code_items,omitempty" yaml:"codes,omitempty"`
	Children  []*NodeDefinition `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsEntity reports whether the definition groups child definitions.
func (d *NodeDefinition) IsEntity() bool {
	return d.Kind == KindEntity
}

// DisplayLabel falls back to the name when no label is set.
func (d *NodeDefinition) DisplayLabel() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

// Child returns the direct child with the given id.
func (d *NodeDefinition) Child(id int) (*NodeDefinition, bool) {
	for _, c := range d.Children {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// KeyChildren returns the key attribute definitions in schema order.
func (d *NodeDefinition) KeyChildren() []*NodeDefinition {
	var keys []*NodeDefinition
	for _, c := range d.Children {
		if c.Key && !c.IsEntity() {
			keys = append(keys, c)
		}
	}
	return keys
}

// CodeIndex returns the ordinal of code within the code list.
func (d *NodeDefinition) CodeIndex(code string) (int, bool) {
	for i, item := range d.CodeItems {
		if item.Code == code {
			return i, true
		}
	}
	return 0, false
}
