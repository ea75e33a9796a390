package schema

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/fieldform/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Decode reads a whole metamodel from a single YAML (or JSON) document whose
// top level is the root entity. Definitions without an id get one assigned in
// document order, after the highest explicit id.
func Decode(r io.Reader) (*Model, error) {
	var root domain.NodeDefinition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decode metamodel: %w", err)
	}
	assignIDs(&root)
	return New(&root)
}

// LoadFile decodes the metamodel stored at path.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Encode writes the metamodel in the format Decode reads.
func Encode(w io.Writer, m *Model) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m.Root()); err != nil {
		return err
	}
	return enc.Close()
}

func assignIDs(root *domain.NodeDefinition) {
	next := 0
	var scan func(d *domain.NodeDefinition)
	scan = func(d *domain.NodeDefinition) {
		if d.ID > next {
			next = d.ID
		}
		for _, c := range d.Children {
			scan(c)
		}
	}
	scan(root)

	var fill func(d *domain.NodeDefinition)
	fill = func(d *domain.NodeDefinition) {
		if d.ID == 0 {
			next++
			d.ID = next
		}
		for _, c := range d.Children {
			fill(c)
		}
	}
	fill(root)
}
