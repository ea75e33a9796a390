// Package testutils holds fixtures shared by package tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/schema"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupDefinitionRepo writes the given definition documents into a temporary
// directory and initializes a Loam repository over it. It returns the absolute
// path and the repository, failing the test immediately on error.
func SetupDefinitionRepo(t *testing.T, files map[string]string, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	repo, err := loam.Init(dir, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return dir, repo
}

// PlotModel is a small forest inventory form: a plot with an area, free
// notes, and trees labelled by species.
//
//	plot (1)
//	├── area (2)       number
//	├── notes (3)      text, multiple
//	└── tree (4)       entity, multiple
//	    └── species (5) text, key
func PlotModel(t *testing.T) *schema.Model {
	t.Helper()
	m, err := schema.New(&domain.NodeDefinition{
		ID: 1, Name: "plot", Kind: domain.KindEntity,
		Children: []*domain.NodeDefinition{
			{ID: 2, Name: "area", Kind: domain.KindNumber},
			{ID: 3, Name: "notes", Kind: domain.KindText, Multiple: true},
			{ID: 4, Name: "tree", Kind: domain.KindEntity, Multiple: true, Children: []*domain.NodeDefinition{
				{ID: 5, Name: "species", Kind: domain.KindText, Key: true},
				{ID: 6, Name: "stem", Kind: domain.KindNumber, Multiple: true},
			}},
		},
	})
	require.NoError(t, err)
	return m
}
