package form

import (
	"testing"

	"github.com/aretw0/fieldform/pkg/adapters/memory"
	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/schema"
	"github.com/stretchr/testify/require"
)

const (
	defPlot     = 1
	defPlotNo   = 2
	defName     = 3
	defArea     = 4
	defNotes    = 5
	defFlag     = 6
	defLandUse  = 7
	defTree     = 8
	defSpecies  = 9
	defDBH      = 10
	defLocation = 12
	defSlope    = 13
	defOwner    = 14
	defOwnName  = 15
)

func plotSchema(t *testing.T) *schema.Model {
	t.Helper()
	root := &domain.NodeDefinition{
		ID: defPlot, Name: "plot", Kind: domain.KindEntity,
		Children: []*domain.NodeDefinition{
			{ID: defPlotNo, Name: "plot_no", Kind: domain.KindNumber, NumberType: domain.NumberInteger, Key: true},
			{ID: defName, Name: "name", Kind: domain.KindText},
			{ID: defArea, Name: "area", Kind: domain.KindNumber},
			{ID: defNotes, Name: "notes", Kind: domain.KindText, Multiple: true},
			{ID: defFlag, Name: "accessible", Kind: domain.KindBoolean},
			{ID: defLandUse, Name: "land_use", Kind: domain.KindCode, CodeItems: []domain.CodeItem{
				{Code: "F", Label: "Forest"}, {Code: "A", Label: "Agriculture"},
			}},
			{ID: defLocation, Name: "location", Kind: domain.KindCoordinate, SRS: "EPSG:4326"},
			{ID: defSlope, Name: "slope", Kind: domain.KindRange, NumberType: domain.NumberInteger},
			{ID: defTree, Name: "tree", Kind: domain.KindEntity, Multiple: true, Children: []*domain.NodeDefinition{
				{ID: defSpecies, Name: "species", Kind: domain.KindCode, Key: true, CodeItems: []domain.CodeItem{
					{Code: "QUE", Label: "Oak"}, {Code: "PIN", Label: "Pine"},
				}},
				{ID: defDBH, Name: "dbh", Kind: domain.KindNumber, Multiple: true},
			}},
			{ID: defOwner, Name: "owner", Kind: domain.KindEntity, Children: []*domain.NodeDefinition{
				{ID: defOwnName, Name: "owner_name", Kind: domain.KindText, Key: true},
			}},
		},
	}
	m, err := schema.New(root)
	require.NoError(t, err)
	return m
}

func newTestSession(t *testing.T, opts ...Option) (*Session, *memory.Record) {
	t.Helper()
	rec := memory.NewRecord("plot")
	return NewSession(plotSchema(t), rec, opts...), rec
}

func attrValue(t *testing.T, rec *memory.Record, path []string, indexes []int, name string, index int) (domain.Value, bool) {
	t.Helper()
	entity := rec.Root()
	for i, p := range path {
		node, ok := entity.FindChild(p, indexes[i])
		if !ok {
			return nil, false
		}
		entity = node.(*memory.Entity)
	}
	node, ok := entity.FindChild(name, index)
	if !ok {
		return nil, false
	}
	return node.(*memory.Attribute).Value(), true
}
