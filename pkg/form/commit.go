package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/field"
	"github.com/aretw0/fieldform/pkg/ports"
	"github.com/aretw0/fieldform/pkg/tree"
)

// Commit normalizes tuple, stores it in the session cache at index and writes the
// typed value through to the record. Tuples with no value leave the record alone.
//
// The normalized tuple is returned whenever it reached the cache, including when
// the record write failed with a *domain.CommitError.
func (s *Session) Commit(ctx context.Context, path domain.ScreenPath, definitionID, index int, tuple domain.ValueTuple) (domain.ValueTuple, error) {
	fail := func(kind domain.CommitErrorKind, err error) error {
		cerr := &domain.CommitError{Kind: kind, Path: path.String(), DefinitionID: definitionID, Index: index, Err: err}
		s.logger.Warn("commit failed", "path", cerr.Path, "definition_id", definitionID, "index", index, "err", err)
		return cerr
	}

	owner, err := s.entityDefinition(path)
	if err != nil {
		return nil, fail(domain.CommitLookupFailed, err)
	}
	def, ok := owner.Child(definitionID)
	if !ok || def.IsEntity() {
		return nil, fail(domain.CommitUnknownDefinition,
			fmt.Errorf("%w: %d is not an attribute of %s", domain.ErrUnknownDefinition, definitionID, owner.Name))
	}
	adapter, err := field.For(def)
	if err != nil {
		return nil, fail(domain.CommitUnknownDefinition, err)
	}

	node, _ := s.tree.GetOrCreate(path)
	fv, _ := node.FieldOrCreate(def, adapter.Arity())
	normalized := adapter.Normalize(tuple)
	if err := fv.Set(index, normalized); err != nil {
		return nil, fail(domain.CommitCacheWrite, err)
	}

	ev := &domain.CommitEvent{Path: path.String(), DefinitionID: def.ID, Kind: def.Kind, Index: index}
	defer s.emitCommit(ctx, ev)

	value, ok := adapter.Convert(normalized)
	if !ok {
		s.logger.Debug("empty value, record untouched", "path", ev.Path, "definition_id", def.ID, "index", index)
		return normalized, nil
	}

	entity, err := s.resolveEntity(path)
	if err != nil {
		ev.Err = fail(domain.CommitLookupFailed, err)
		return normalized, ev.Err
	}
	if err := writeValue(entity, def, value, index); err != nil {
		ev.Err = fail(domain.CommitRecordWrite, err)
		return normalized, ev.Err
	}

	ev.Written = true
	s.logger.Debug("committed", "path", ev.Path, "definition_id", def.ID, "index", index, "value", value.String())
	return normalized, nil
}

// writeValue mutates an existing attribute in place, or inserts one at index.
func writeValue(entity ports.Entity, def *domain.NodeDefinition, value domain.Value, index int) error {
	node, found := entity.FindChild(def.Name, index)
	if !found {
		_, err := entity.AddValue(def.Name, value, index)
		return err
	}
	attr, ok := node.(ports.Attribute)
	if !ok {
		return fmt.Errorf("%s[%d] is not an attribute", def.Name, index)
	}
	return attr.SetValue(value)
}

// hydrate fills an empty field value from the record, if the record already
// holds instances for it.
func (s *Session) hydrate(path domain.ScreenPath, def *domain.NodeDefinition, adapter field.Adapter, fv *tree.FieldValue) {
	entity, ok := s.findEntity(path)
	if !ok {
		return
	}
	if !def.Multiple {
		if node, ok := entity.FindChild(def.Name, 0); ok {
			if attr, ok := node.(ports.Attribute); ok {
				s.seed(path, def, fv, []domain.ValueTuple{adapter.Tuple(attr.Value())})
			}
		}
		return
	}

	count := entity.Count(def.Name)
	var tuples []domain.ValueTuple
	for i, found := 0, 0; found < count && i < maxHydrateIndex; i++ {
		node, ok := entity.FindChild(def.Name, i)
		if !ok {
			tuples = append(tuples, domain.NewTuple(adapter.Arity()))
			continue
		}
		found++
		if attr, ok := node.(ports.Attribute); ok {
			tuples = append(tuples, adapter.Tuple(attr.Value()))
		} else {
			tuples = append(tuples, domain.NewTuple(adapter.Arity()))
		}
	}
	if len(tuples) > 0 {
		s.seed(path, def, fv, tuples)
	}
}

func (s *Session) seed(path domain.ScreenPath, def *domain.NodeDefinition, fv *tree.FieldValue, tuples []domain.ValueTuple) {
	if err := fv.Seed(tuples); err != nil {
		s.logger.Warn("seed field value failed", "path", path.String(), "definition_id", def.ID, "err", err)
	}
}

// hydrateInstances adds tree nodes for child entity instances the record already
// holds under path, with their key attributes filled so summary rows can be
// labeled before the instances are opened.
func (s *Session) hydrateInstances(path domain.ScreenPath, def *domain.NodeDefinition) {
	entity, ok := s.findEntity(path)
	if !ok {
		return
	}
	count := entity.Count(def.Name)
	for i, found := 0, 0; found < count && i < maxHydrateIndex; i++ {
		node, ok := entity.FindChild(def.Name, i)
		if !ok {
			continue
		}
		found++
		if _, ok := node.(ports.Entity); !ok {
			continue
		}
		childPath := domain.BuildPath(path, def.ID, i)
		child, _ := s.tree.GetOrCreate(childPath)
		for _, key := range def.KeyChildren() {
			adapter, err := field.For(key)
			if err != nil {
				continue
			}
			if fv, cached := child.FieldOrCreate(key, adapter.Arity()); !cached {
				s.hydrate(childPath, key, adapter, fv)
			}
		}
	}
}

// Replay writes every cached value through to the record. A session restored
// from a snapshot starts with an empty record; replaying brings the two back in
// line. No commit hooks fire.
func (s *Session) Replay() error {
	var errs []error
	for _, n := range s.tree.Nodes() {
		var entity ports.Entity
		for _, fv := range n.Fields() {
			def, ok := s.schema.Definition(fv.DefinitionID)
			if !ok || def.IsEntity() {
				errs = append(errs, fmt.Errorf("replay %s: %w: %d", n.Key(), domain.ErrUnknownDefinition, fv.DefinitionID))
				continue
			}
			adapter, err := field.For(def)
			if err != nil {
				errs = append(errs, fmt.Errorf("replay %s: %w", n.Key(), err))
				continue
			}
			for i, t := range fv.Values() {
				value, ok := adapter.Convert(t)
				if !ok {
					continue
				}
				if entity == nil {
					if entity, err = s.resolveEntity(n.Path); err != nil {
						errs = append(errs, fmt.Errorf("replay %s: %w", n.Key(), err))
						break
					}
				}
				if err := writeValue(entity, def, value, i); err != nil {
					errs = append(errs, fmt.Errorf("replay %s %s[%d]: %w", n.Key(), def.Name, i, err))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// maxHydrateIndex bounds the scan over sparse record children.
const maxHydrateIndex = 1 << 16
