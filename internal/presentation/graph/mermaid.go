package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/tree"
)

// Overlay marks definitions a session has reached.
type Overlay struct {
	Visited []int // entity definitions with an opened screen and attributes holding a value
	Current int   // definition of the screen being shown; 0 for none
}

// OverlayFromSnapshot derives the visited definitions from a stored session.
func OverlayFromSnapshot(snap *tree.Snapshot) (*Overlay, error) {
	o := &Overlay{}
	for _, n := range snap.Nodes {
		path, err := domain.ParseInstancePath(n.Path)
		if err != nil {
			return nil, err
		}
		o.Visited = append(o.Visited, path.Last().DefinitionID)
		for _, f := range n.Fields {
			for _, t := range f.Values {
				if !t.IsEmpty() {
					o.Visited = append(o.Visited, f.DefinitionID)
					break
				}
			}
		}
	}
	return o, nil
}

// GenerateMermaid produces a Mermaid flowchart of the definition tree rooted at root.
// Shapes:
// - Form root: ((Circle))
// - Entity: [[Subroutine]]
// - Key attribute: [/Parallelogram/]
// - Attribute: [Rectangle]
// Edges to multiple definitions are labelled "*".
func GenerateMermaid(root *domain.NodeDefinition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	writeDefinition(&sb, root, true)

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[int]bool)
		for _, id := range overlay.Visited {
			if !seen[id] && id > 0 {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", nodeID(id))
			}
		}
		if overlay.Current > 0 {
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(overlay.Current))
		}
	}

	return sb.String()
}

func writeDefinition(sb *strings.Builder, def *domain.NodeDefinition, isRoot bool) {
	opener, closer := "[", "]"
	switch {
	case isRoot:
		opener, closer = "((", "))"
	case def.IsEntity():
		opener, closer = "[[", "]]"
	case def.Key:
		opener, closer = "[/", "/]"
	}

	label := def.DisplayLabel()
	if !def.IsEntity() {
		label = fmt.Sprintf("%s <br/> %s", label, def.Kind)
	}
	fmt.Fprintf(sb, "    %s%s\"%s\"%s\n", nodeID(def.ID), opener, quote(label), closer)

	for _, c := range def.Children {
		arrow := "-->"
		if c.Multiple {
			arrow = `-- "*" -->`
		}
		fmt.Fprintf(sb, "    %s %s %s\n", nodeID(def.ID), arrow, nodeID(c.ID))
	}
	for _, c := range def.Children {
		writeDefinition(sb, c, false)
	}
}

func nodeID(id int) string {
	return fmt.Sprintf("d%d", id)
}

func quote(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
