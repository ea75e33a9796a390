// Package loam loads a form metamodel from a directory of definition documents,
// one document per entity or attribute, using the Loam document store.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/schema"
	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"
)

// Loader builds a metamodel from a Loam repository.
type Loader struct {
	Repo *loam.TypedRepository[DefinitionMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[DefinitionMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at dir.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	// Strict mode yields json.Number for every numeric key regardless of format.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[DefinitionMetadata](repo)), nil
}

type entry struct {
	def    *domain.NodeDefinition
	parent int
	order  int
	source string
}

// Load reads every document and links definitions into a tree by their parent
// ids. The root is the single definition without a parent. Document bodies
// become help text.
func (l *Loader) Load(ctx context.Context) (*domain.NodeDefinition, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	entries := make(map[int]*entry, len(docs))
	for _, doc := range docs {
		meta := doc.Data
		if meta.ID <= 0 {
			return nil, fmt.Errorf("%s: id must be a positive integer", doc.ID)
		}
		if existing, ok := entries[meta.ID]; ok {
			return nil, fmt.Errorf("collision detected: id %d is defined in both '%s' and '%s'", meta.ID, existing.source, doc.ID)
		}
		def, err := toDefinition(doc.ID, meta, doc.Content)
		if err != nil {
			return nil, err
		}
		entries[meta.ID] = &entry{def: def, parent: meta.Parent, order: meta.Order, source: doc.ID}
	}

	var roots []*entry
	children := make(map[int][]*entry)
	for _, e := range entries {
		if e.parent == 0 {
			roots = append(roots, e)
			continue
		}
		if _, ok := entries[e.parent]; !ok {
			return nil, fmt.Errorf("%s: %w: parent %d", e.source, domain.ErrUnknownDefinition, e.parent)
		}
		children[e.parent] = append(children[e.parent], e)
	}
	switch len(roots) {
	case 0:
		return nil, fmt.Errorf("no root definition (a document without parent)")
	case 1:
	default:
		names := make([]string, 0, len(roots))
		for _, r := range roots {
			names = append(names, r.source)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("multiple root definitions: %s", strings.Join(names, ", "))
	}

	for id, kids := range children {
		sort.Slice(kids, func(i, j int) bool {
			if kids[i].order != kids[j].order {
				return kids[i].order < kids[j].order
			}
			return kids[i].def.ID < kids[j].def.ID
		})
		parent := entries[id].def
		for _, k := range kids {
			parent.Children = append(parent.Children, k.def)
		}
	}
	return roots[0].def, nil
}

// LoadModel loads and validates the metamodel.
func (l *Loader) LoadModel(ctx context.Context) (*schema.Model, error) {
	root, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return schema.New(root)
}

func toDefinition(source string, meta DefinitionMetadata, content string) (*domain.NodeDefinition, error) {
	name := meta.Name
	if name == "" {
		name = trimExtension(filepath.Base(source))
	}
	kind := domain.Kind(meta.Kind)
	if meta.Kind == "" {
		kind = domain.KindText
	}
	codes, err := decodeCodes(meta.Codes)
	if err != nil {
		return nil, fmt.Errorf("%s: codes: %w", source, err)
	}
	return &domain.NodeDefinition{
		ID:         meta.ID,
		Name:       name,
		Label:      meta.Label,
		Help:       strings.TrimSpace(content),
		Kind:       kind,
		Multiple:   meta.Multiple,
		Key:        meta.Key,
		NumberType: domain.NumberType(meta.NumberType),
		SRS:        meta.SRS,
		CodeItems:  codes,
	}, nil
}

func decodeCodes(raw []any) ([]domain.CodeItem, error) {
	items := make([]domain.CodeItem, 0, len(raw))
	for i, v := range raw {
		switch c := v.(type) {
		case string:
			code, label, _ := strings.Cut(c, "=")
			items = append(items, domain.CodeItem{Code: strings.TrimSpace(code), Label: strings.TrimSpace(label)})
		default:
			var item domain.CodeItem
			dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
				Result:           &item,
				WeaklyTypedInput: true,
			})
			if err != nil {
				return nil, err
			}
			if err := dec.Decode(v); err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, item)
		}
	}
	return items, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
