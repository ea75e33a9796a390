package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/field"
	"github.com/aretw0/fieldform/pkg/form"
	"github.com/charmbracelet/glamour"
)

// Renderer turns markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour renderer. Plain output drops colors and is used
// when stdout is not a terminal.
func NewRenderer(plain bool) (Renderer, error) {
	style := glamour.WithAutoStyle()
	if plain {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	return r.Render, nil
}

// ScreenMarkdown describes a screen: its attributes with the instance being
// edited, followed by the instance lists of child entities.
func ScreenMarkdown(sc *form.Screen) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s `%s`\n\n", sc.Definition.DisplayLabel(), sc.Path)
	if sc.Definition.Help != "" {
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(sc.Definition.Help))
	}

	if len(sc.Fields) > 0 {
		b.WriteString("| Field | Value | Instance |\n|---|---|---|\n")
		for _, f := range sc.Fields {
			instance := ""
			if f.Multiple() {
				instance = fmt.Sprintf("%d/%d", f.Index()+1, f.Size())
			}
			fmt.Fprintf(&b, "| %s (`%s`) | %s | %s |\n",
				cell(f.Definition.DisplayLabel()), f.Definition.Name, cell(FieldText(f.Render())), instance)
		}
		b.WriteString("\n")
	}

	for _, e := range sc.Entities {
		fmt.Fprintf(&b, "## %s (`%s`)\n\n", e.Definition.DisplayLabel(), e.Definition.Name)
		rows := e.Rows()
		if len(rows) == 0 {
			b.WriteString("_none yet_\n\n")
		}
		for _, r := range rows {
			fmt.Fprintf(&b, "- `%d` %s\n", r.Index, r.Label)
		}
		if len(rows) > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FieldText is the one-line display of a field instance.
func FieldText(st field.DisplayState) string {
	switch st.Kind {
	case domain.KindBoolean:
		switch {
		case st.Unset:
			return "(unset)"
		case st.Checked:
			return "yes"
		default:
			return "no"
		}
	case domain.KindCode:
		code := strings.Join(st.Text, "")
		if st.Matched && st.Label != "" {
			return fmt.Sprintf("%s (%s)", code, st.Label)
		}
		return code
	case domain.KindRange:
		if allEmpty(st.Text) {
			return ""
		}
		return strings.Join(st.Text, " .. ")
	case domain.KindCoordinate:
		if allEmpty(st.Text) {
			return ""
		}
		return strings.Join(st.Text, ", ")
	default:
		return strings.Join(st.Text, " ")
	}
}

func allEmpty(parts []string) bool {
	for _, p := range parts {
		if p != "" {
			return false
		}
	}
	return true
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
