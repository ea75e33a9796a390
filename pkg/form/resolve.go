package form

import (
	"fmt"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/ports"
)

// entityDefinition returns the definition addressed by the last segment of path,
// checking every segment against the schema on the way down.
func (s *Session) entityDefinition(path domain.ScreenPath) (*domain.NodeDefinition, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", domain.ErrMalformedPath)
	}
	root := s.schema.Root()
	if path[0].DefinitionID != root.ID || path[0].Index != 0 {
		return nil, fmt.Errorf("%w: %s does not start at form root %d", domain.ErrParentNotFound, path, root.ID)
	}
	def := root
	for _, seg := range path[1:] {
		child, ok := def.Child(seg.DefinitionID)
		if !ok || !child.IsEntity() {
			return nil, fmt.Errorf("%w: %d is not a child entity of %s", domain.ErrParentNotFound, seg.DefinitionID, def.Name)
		}
		if !child.Multiple && seg.Index > 0 {
			return nil, fmt.Errorf("%w: %s is single but index is %d", domain.ErrParentNotFound, child.Name, seg.Index)
		}
		def = child
	}
	return def, nil
}

// resolveEntity walks the record from the root down to the entity addressed by
// path, creating missing entity instances on the way.
func (s *Session) resolveEntity(path domain.ScreenPath) (ports.Entity, error) {
	if _, err := s.entityDefinition(path); err != nil {
		return nil, err
	}
	entity := s.record.Root()
	if entity == nil {
		return nil, fmt.Errorf("%w: record has no root", domain.ErrParentNotFound)
	}
	for _, seg := range path[1:] {
		def, _ := s.schema.Definition(seg.DefinitionID)
		node, ok := entity.FindChild(def.Name, seg.Index)
		if !ok {
			child, err := entity.AddEntity(def.Name, seg.Index)
			if err != nil {
				return nil, fmt.Errorf("%w: add %s[%d]: %v", domain.ErrParentNotFound, def.Name, seg.Index, err)
			}
			entity = child
			continue
		}
		child, ok := node.(ports.Entity)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is not an entity", domain.ErrParentNotFound, def.Name, seg.Index)
		}
		entity = child
	}
	return entity, nil
}

// findEntity is resolveEntity without creation.
func (s *Session) findEntity(path domain.ScreenPath) (ports.Entity, bool) {
	if _, err := s.entityDefinition(path); err != nil {
		return nil, false
	}
	entity := s.record.Root()
	if entity == nil {
		return nil, false
	}
	for _, seg := range path[1:] {
		def, _ := s.schema.Definition(seg.DefinitionID)
		node, ok := entity.FindChild(def.Name, seg.Index)
		if !ok {
			return nil, false
		}
		if entity, ok = node.(ports.Entity); !ok {
			return nil, false
		}
	}
	return entity, true
}
