package form

import (
	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/field"
)

// ScreenView is the serializable state of a screen for remote hosts.
type ScreenView struct {
	Path       string       `json:"path"`
	Definition string       `json:"definition"`
	Label      string       `json:"label"`
	Help       string       `json:"help,omitempty"`
	Restored   bool         `json:"restored"`
	Fields     []FieldView  `json:"fields"`
	Entities   []EntityView `json:"entities,omitempty"`
}

// FieldView describes one bound attribute at the instance being shown.
type FieldView struct {
	Name     string             `json:"name"`
	Label    string             `json:"label"`
	Kind     domain.Kind        `json:"kind"`
	Multiple bool               `json:"multiple,omitempty"`
	Index    int                `json:"index"`
	Size     int                `json:"size"`
	Values   domain.ValueTuple  `json:"values"`
	Display  field.DisplayState `json:"display"`
	Codes    []domain.CodeItem  `json:"codes,omitempty"`
}

// EntityView lists the instances of a child entity.
type EntityView struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Multiple bool      `json:"multiple,omitempty"`
	CanAdd   bool      `json:"can_add"`
	Rows     []RowView `json:"rows"`
}

type RowView struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

// View captures the screen for serialization.
func (sc *Screen) View() ScreenView {
	v := ScreenView{
		Path:       sc.Path.String(),
		Definition: sc.Definition.Name,
		Label:      sc.Definition.DisplayLabel(),
		Help:       sc.Definition.Help,
		Restored:   sc.Restored,
		Fields:     make([]FieldView, 0, len(sc.Fields)),
	}
	for _, b := range sc.Fields {
		v.Fields = append(v.Fields, b.View())
	}
	for _, e := range sc.Entities {
		ev := EntityView{
			Name:     e.Definition.Name,
			Label:    e.Definition.DisplayLabel(),
			Multiple: e.Definition.Multiple,
			CanAdd:   e.CanAdd(),
			Rows:     []RowView{},
		}
		for _, r := range e.Rows() {
			ev.Rows = append(ev.Rows, RowView{Index: r.Index, Label: r.Label, Path: r.Path.String()})
		}
		v.Entities = append(v.Entities, ev)
	}
	return v
}

// View captures the binding for serialization.
func (b *Binding) View() FieldView {
	return FieldView{
		Name:     b.Definition.Name,
		Label:    b.Definition.DisplayLabel(),
		Kind:     b.Definition.Kind,
		Multiple: b.Multiple(),
		Index:    b.Index(),
		Size:     b.Size(),
		Values:   b.Shown(),
		Display:  b.Render(),
		Codes:    b.Definition.CodeItems,
	}
}
