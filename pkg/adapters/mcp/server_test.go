package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/fieldform/internal/testutils"
	"github.com/aretw0/fieldform/pkg/adapters/memory"
	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	m := testutils.PlotModel(t)
	return NewServer(session.NewManager(memory.NewStore(), m), "0.1.0\n")
}

func TestServer_FillScreen(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	res, err := s.handleStart(ctx, req, StartArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "s1", res.SessionID)
	assert.Equal(t, "1-0", res.Screen.Path)
	assert.Contains(t, res.Markdown, "| Field | Value | Instance |")

	res, err = s.handleEditField(ctx, req, EditFieldArgs{SessionID: "s1", Field: "notes", Values: []string{"first"}})
	require.NoError(t, err)
	assert.Empty(t, res.Warning)

	res, err = s.handleNavigate(ctx, req, NavigateArgs{SessionID: "s1", Field: "notes", Direction: "next"})
	require.NoError(t, err)
	notes := res.Screen.Fields[1]
	assert.Equal(t, "notes", notes.Name)
	assert.Equal(t, 1, notes.Index)
	assert.Equal(t, 2, notes.Size)

	res, err = s.handleNavigate(ctx, req, NavigateArgs{SessionID: "s1", Field: "notes", Direction: "previous"})
	require.NoError(t, err)
	assert.Equal(t, domain.TupleOf("first"), res.Screen.Fields[1].Values)

	dump, err := s.record(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "first", dump["notes"])
}

func TestServer_Entities(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleStart(ctx, req, StartArgs{SessionID: "s1"})
	require.NoError(t, err)

	res, err := s.handleOpenEntity(ctx, req, OpenEntityArgs{SessionID: "s1", Entity: "tree"})
	require.NoError(t, err)
	assert.Equal(t, "1-0.4-0", res.Screen.Path)

	_, err = s.handleEditField(ctx, req, EditFieldArgs{SessionID: "s1", Field: "species", Values: []string{"Oak"}})
	require.NoError(t, err)

	res, err = s.handleOpenScreen(ctx, req, OpenScreenArgs{SessionID: "s1", Path: "1-0"})
	require.NoError(t, err)
	require.Len(t, res.Screen.Entities, 1)
	require.Len(t, res.Screen.Entities[0].Rows, 1)
	assert.Equal(t, "Oak", res.Screen.Entities[0].Rows[0].Label)

	zero := 0
	res, err = s.handleOpenEntity(ctx, req, OpenEntityArgs{SessionID: "s1", Entity: "tree", Index: &zero})
	require.NoError(t, err)
	assert.Equal(t, "1-0.4-0", res.Screen.Path)

	res, err = s.handleOpenScreen(ctx, req, OpenScreenArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "1-0.4-0", res.Screen.Path, "the current screen is kept between calls")
}

func TestServer_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleOpenScreen(ctx, req, OpenScreenArgs{SessionID: "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = s.handleStart(ctx, req, StartArgs{SessionID: "s1"})
	require.NoError(t, err)
	_, err = s.handleStart(ctx, req, StartArgs{SessionID: "s1"})
	assert.ErrorIs(t, err, domain.ErrSessionExists)

	_, err = s.handleOpenScreen(ctx, req, OpenScreenArgs{SessionID: "s1", Path: "x-y"})
	assert.ErrorIs(t, err, domain.ErrMalformedPath)

	_, err = s.handleEditField(ctx, req, EditFieldArgs{SessionID: "s1", Field: "nope", Values: []string{"1"}})
	assert.Error(t, err)

	_, err = s.handleNavigate(ctx, req, NavigateArgs{SessionID: "s1", Field: "area", Direction: "next"})
	assert.ErrorContains(t, err, "not multiple")

	_, err = s.handleNavigate(ctx, req, NavigateArgs{SessionID: "s1", Field: "notes", Direction: "sideways"})
	assert.Error(t, err)

	negative := -1
	_, err = s.handleOpenEntity(ctx, req, OpenEntityArgs{SessionID: "s1", Entity: "tree", Index: &negative})
	assert.Error(t, err)
}

func TestServer_NewSibling(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleStart(ctx, req, StartArgs{SessionID: "s1"})
	require.NoError(t, err)
	_, err = s.handleNewSibling(ctx, req, NewSiblingArgs{SessionID: "s1", Carry: true})
	assert.Error(t, err)

	_, err = s.handleOpenEntity(ctx, req, OpenEntityArgs{SessionID: "s1", Entity: "tree"})
	require.NoError(t, err)
	_, err = s.handleEditField(ctx, req, EditFieldArgs{SessionID: "s1", Field: "stem", Values: []string{"7"}})
	require.NoError(t, err)

	res, err := s.handleNewSibling(ctx, req, NewSiblingArgs{SessionID: "s1", Carry: true})
	require.NoError(t, err)
	assert.Equal(t, "1-0.4-1", res.Screen.Path)
	assert.Equal(t, "stem", res.Screen.Fields[1].Name)
	assert.Equal(t, domain.TupleOf("7"), res.Screen.Fields[1].Values)

	res, err = s.handleNewSibling(ctx, req, NewSiblingArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "1-0.4-2", res.Screen.Path)
	assert.NotEqual(t, domain.TupleOf("7"), res.Screen.Fields[1].Values)
}
