package schema

import (
	"github.com/aretw0/fieldform/pkg/domain"
)

// Validate checks a definition tree rooted at root.
// Returns an AggregateError with all failures found.
func Validate(root *domain.NodeDefinition) error {
	if root == nil {
		return &AggregateError{Errors: []error{&ValidationError{Reason: "missing root definition"}}}
	}

	var errs []error
	seen := make(map[int]bool)

	if root.Kind != domain.KindEntity {
		errs = append(errs, &ValidationError{ID: root.ID, Name: root.Name, Reason: "root must be an entity"})
	}
	if root.Multiple {
		errs = append(errs, &ValidationError{ID: root.ID, Name: root.Name, Reason: "root cannot be multiple"})
	}

	var walk func(def *domain.NodeDefinition)
	walk = func(def *domain.NodeDefinition) {
		fail := func(reason string) {
			errs = append(errs, &ValidationError{ID: def.ID, Name: def.Name, Reason: reason})
		}

		if seen[def.ID] {
			fail("duplicate id")
		}
		seen[def.ID] = true

		if def.Name == "" {
			fail("name is required")
		}
		if _, err := domain.ParseKind(string(def.Kind)); err != nil {
			fail(err.Error())
		}

		switch def.Kind {
		case domain.KindEntity:
			if len(def.Children) == 0 {
				fail("entity has no children")
			}
			if def.Key {
				fail("entities cannot be key attributes")
			}
		case domain.KindCode:
			if len(def.CodeItems) == 0 {
				fail("code attribute has no code items")
			}
		default:
			if len(def.Children) > 0 {
				fail("attributes cannot have children")
			}
		}

		if def.NumberType != "" && def.NumberType != domain.NumberInteger && def.NumberType != domain.NumberReal {
			fail("unknown number type " + string(def.NumberType))
		}
		if def.Key && def.Multiple {
			fail("key attributes must be single")
		}

		names := make(map[string]bool)
		for _, c := range def.Children {
			if c == nil {
				fail("nil child definition")
				continue
			}
			if names[c.Name] {
				errs = append(errs, &ValidationError{ID: c.ID, Name: c.Name, Reason: "duplicate child name"})
			}
			names[c.Name] = true
			walk(c)
		}
	}
	walk(root)

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
