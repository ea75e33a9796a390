package form

import (
	"context"
	"testing"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRoot(t *testing.T, s *Session) *Screen {
	t.Helper()
	sc, err := s.OpenScreen(context.Background(), OpenRequest{DefinitionID: defPlot})
	require.NoError(t, err)
	return sc
}

func TestOpenScreen_BindsChildrenInSchemaOrder(t *testing.T) {
	s, _ := newTestSession(t)
	sc := openRoot(t, s)

	var names []string
	for _, b := range sc.Fields {
		names = append(names, b.Definition.Name)
	}
	assert.Equal(t, []string{"plot_no", "name", "area", "notes", "accessible", "land_use", "location", "slope"}, names)
	require.Len(t, sc.Entities, 2)
	assert.Equal(t, "tree", sc.Entities[0].Definition.Name)
	assert.Equal(t, "owner", sc.Entities[1].Definition.Name)
	assert.False(t, sc.Restored)
	assert.Equal(t, "1-0", sc.Path.String())

	notes, _ := sc.Field("notes")
	assert.True(t, notes.Multiple())
	assert.Equal(t, 1, notes.Size(), "a multiple attribute always shows one instance")
}

func TestOpenScreen_RestoresCacheOnReopen(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	sc := openRoot(t, s)
	name, _ := sc.Field("name")
	require.NoError(t, name.Edit(ctx, domain.TupleOf("North ridge")))
	flag, _ := sc.Field("accessible")
	require.NoError(t, flag.Edit(ctx, domain.ValueTuple{nil, domain.Str("true")}))

	again := openRoot(t, s)
	assert.True(t, again.Restored)
	name, _ = again.Field("name")
	assert.Equal(t, []string{"North ridge"}, name.Render().Text)
	flag, _ = again.Field("accessible")
	st := flag.Render()
	assert.False(t, st.Checked)
	assert.False(t, st.Unset)
}

func TestOpenScreen_HydratesFromRecord(t *testing.T) {
	s, rec := newTestSession(t)
	root := rec.Root()
	_, err := root.AddValue("name", domain.TextValue("existing"), 0)
	require.NoError(t, err)
	_, err = root.AddValue("notes", domain.TextValue("n0"), 0)
	require.NoError(t, err)
	_, err = root.AddValue("notes", domain.TextValue("n2"), 2)
	require.NoError(t, err)
	_, err = root.AddValue("area", domain.RealValue(3.5), 0)
	require.NoError(t, err)

	sc := openRoot(t, s)

	name, _ := sc.Field("name")
	assert.Equal(t, []string{"existing"}, name.Shown().Strings())
	area, _ := sc.Field("area")
	assert.Equal(t, []string{"3.5"}, area.Shown().Strings())
	notes, _ := sc.Field("notes")
	assert.Equal(t, 3, notes.Size())
	assert.Equal(t, []string{"n0", "", "n2"}, fvStrings(notes.field))
}

func TestOpenScreen_CarriedValuesSeedFirstVisit(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	trees, _ := openRoot(t, s).Entity("tree")

	first, err := trees.Add(ctx)
	require.NoError(t, err)
	dbh, _ := first.Field("dbh")
	require.NoError(t, dbh.Edit(ctx, domain.TupleOf("12")))
	require.NoError(t, dbh.Next(ctx))
	require.NoError(t, dbh.Edit(ctx, domain.TupleOf("14")))

	carried := first.Suspend()
	assert.Equal(t, "1-0.8-0", carried.Path)
	require.Contains(t, carried.Values, defDBH)

	second, err := trees.Enter(ctx, 1, &carried)
	require.NoError(t, err)
	dbh2, _ := second.Field("dbh")
	assert.Equal(t, []string{"12", "14"}, fvStrings(dbh2.field))
	assert.Equal(t, 0, dbh2.Index())
}

func TestOpenScreen_CarriedValuesIgnoredOnRevisit(t *testing.T) {
	s, rec := newTestSession(t)
	ctx := context.Background()
	trees, _ := openRoot(t, s).Entity("tree")

	_, err := trees.Add(ctx)
	require.NoError(t, err)
	second, err := trees.Add(ctx)
	require.NoError(t, err)
	dbh, _ := second.Field("dbh")
	for i, v := range []string{"30", "31", "32"} {
		if i > 0 {
			require.NoError(t, dbh.Next(ctx))
		}
		require.NoError(t, dbh.Edit(ctx, domain.TupleOf(v)))
	}
	second.Suspend()

	carried := NavigationResult{Values: map[int][]domain.ValueTuple{defDBH: {domain.TupleOf("9")}}}
	again, err := trees.Enter(ctx, 1, &carried)
	require.NoError(t, err)
	assert.True(t, again.Restored)

	dbh2, _ := again.Field("dbh")
	assert.Equal(t, 3, dbh2.Size())
	assert.Equal(t, []string{"30", "31", "32"}, fvStrings(dbh2.field))

	v, ok := attrValue(t, rec, []string{"tree"}, []int{1}, "dbh", 2)
	require.True(t, ok)
	assert.Equal(t, domain.RealValue(32), v)
}

func TestOpenScreen_ListsRecordEntities(t *testing.T) {
	s, rec := newTestSession(t)
	ctx := context.Background()
	oak, err := rec.Root().AddEntity("tree", 0)
	require.NoError(t, err)
	_, err = oak.AddValue("species", domain.CodeValue("QUE"), 0)
	require.NoError(t, err)
	_, err = oak.AddValue("dbh", domain.RealValue(41), 0)
	require.NoError(t, err)

	trees, _ := openRoot(t, s).Entity("tree")
	rows := trees.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].Index)
	assert.Equal(t, "Oak", rows[0].Label)

	next, err := trees.Add(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1-0.8-1", next.Path.String(), "add goes after the recorded instance")

	existing, err := trees.Enter(ctx, 0, nil)
	require.NoError(t, err)
	dbh, _ := existing.Field("dbh")
	assert.Equal(t, []string{"41"}, dbh.Shown().Strings())
}

func TestOpenScreen_RejectsUnknownPaths(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	_, err := s.OpenScreen(ctx, OpenRequest{DefinitionID: defName, Parent: s.RootPath()})
	assert.ErrorIs(t, err, domain.ErrParentNotFound, "attributes have no screen")

	_, err = s.OpenScreen(ctx, OpenRequest{DefinitionID: defTree})
	assert.ErrorIs(t, err, domain.ErrParentNotFound, "tree is not the form root")
	assert.Equal(t, 0, s.Tree().Len())
}

func TestEntityList_RowsAndLabels(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	trees, _ := openRoot(t, s).Entity("tree")
	assert.Empty(t, trees.Rows())

	oak, err := trees.Add(ctx)
	require.NoError(t, err)
	species, _ := oak.Field("species")
	require.NoError(t, species.Edit(ctx, domain.TupleOf("QUE")))

	odd, err := trees.Add(ctx)
	require.NoError(t, err)
	species, _ = odd.Field("species")
	require.NoError(t, species.Edit(ctx, domain.TupleOf("ZZZ")))

	_, err = trees.Add(ctx)
	require.NoError(t, err)

	rows := trees.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{rows[0].Index, rows[1].Index, rows[2].Index})
	assert.Equal(t, "Oak", rows[0].Label)
	assert.Equal(t, "ZZZ", rows[1].Label)
	assert.Equal(t, "tree #3", rows[2].Label)
	assert.Equal(t, "1-0.8-2", rows[2].Path.String())
}

func TestEntityList_SingleAcceptsOneInstance(t *testing.T) {
	s, rec := newTestSession(t)
	ctx := context.Background()
	owner, _ := openRoot(t, s).Entity("owner")
	require.True(t, owner.CanAdd())

	sc, err := owner.Add(ctx)
	require.NoError(t, err)
	name, _ := sc.Field("owner_name")
	require.NoError(t, name.Edit(ctx, domain.TupleOf("Ada")))

	assert.False(t, owner.CanAdd())
	_, err = owner.Add(ctx)
	assert.Error(t, err)

	v, ok := attrValue(t, rec, []string{"owner"}, []int{0}, "owner_name", 0)
	require.True(t, ok)
	assert.Equal(t, domain.TextValue("Ada"), v)
	assert.Equal(t, "Ada", owner.Rows()[0].Label)
}

func TestScreen_Parent(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	root := openRoot(t, s)
	trees, _ := root.Entity("tree")
	child, err := trees.Add(ctx)
	require.NoError(t, err)

	up, err := child.Parent(ctx)
	require.NoError(t, err)
	require.NotNil(t, up)
	assert.True(t, up.Path.Equal(root.Path))
	assert.True(t, up.Restored)

	top, err := root.Parent(ctx)
	require.NoError(t, err)
	assert.Nil(t, top)
}

func TestSession_SnapshotResume(t *testing.T) {
	s, rec := newTestSession(t, WithID("resume-me"))
	ctx := context.Background()
	sc := openRoot(t, s)
	notes, _ := sc.Field("notes")
	require.NoError(t, notes.Edit(ctx, domain.TupleOf("one")))
	require.NoError(t, notes.Next(ctx))
	require.NoError(t, notes.Edit(ctx, domain.TupleOf("two")))

	snap := s.Snapshot()
	assert.Equal(t, "resume-me", snap.SessionID)
	assert.Equal(t, defPlot, snap.FormID)

	restored, err := tree.Restore(snap.Nodes)
	require.NoError(t, err)
	resumed := NewSession(plotSchema(t), rec, WithID(snap.SessionID), WithTree(restored))

	sc = openRoot(t, resumed)
	assert.True(t, sc.Restored)
	notes, _ = sc.Field("notes")
	assert.Equal(t, []string{"one", "two"}, fvStrings(notes.field))
}

func TestSession_ScreenOpenHook(t *testing.T) {
	var events []*domain.ScreenEvent
	s, _ := newTestSession(t, WithHooks(domain.Hooks{
		OnScreenOpen: func(_ context.Context, e *domain.ScreenEvent) { events = append(events, e) },
	}))

	openRoot(t, s)
	openRoot(t, s)

	require.Len(t, events, 2)
	assert.False(t, events[0].Restored)
	assert.True(t, events[1].Restored)
	assert.Equal(t, domain.EventScreenOpen, events[0].Type)
}

func TestScreen_ViewAndOpenPath(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	root, err := s.OpenScreen(ctx, OpenRequest{DefinitionID: defPlot})
	require.NoError(t, err)
	notes, _ := root.Field("notes")
	require.NoError(t, notes.Edit(ctx, domain.TupleOf("n0")))
	require.NoError(t, notes.Next(ctx))

	trees, _ := root.Entity("tree")
	_, err = trees.Add(ctx)
	require.NoError(t, err)

	v := root.View()
	assert.Equal(t, "1-0", v.Path)
	assert.Equal(t, "plot", v.Definition)
	require.Len(t, v.Entities, 2)
	assert.Equal(t, "tree", v.Entities[0].Name)
	require.Len(t, v.Entities[0].Rows, 1)
	assert.Equal(t, "1-0.8-0", v.Entities[0].Rows[0].Path)

	var nv FieldView
	for _, f := range v.Fields {
		if f.Name == "notes" {
			nv = f
		}
	}
	assert.True(t, nv.Multiple)
	assert.Equal(t, 1, nv.Index)
	assert.Equal(t, 2, nv.Size)

	sc, err := s.OpenPath(ctx, domain.MustParseInstancePath("1-0.8-0"))
	require.NoError(t, err)
	assert.Equal(t, "tree", sc.Definition.Name)
	assert.True(t, sc.Restored)

	_, err = s.OpenPath(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrMalformedPath)
}

func TestScreen_NewSibling(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	root := openRoot(t, s)

	_, err := root.NewSibling(ctx, true)
	assert.Error(t, err)

	trees, _ := root.Entity("tree")
	first, err := trees.Add(ctx)
	require.NoError(t, err)
	dbh, _ := first.Field("dbh")
	require.NoError(t, dbh.Edit(ctx, domain.TupleOf("12")))

	carried, err := first.NewSibling(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "1-0.8-1", carried.Path.String())
	dbh2, _ := carried.Field("dbh")
	assert.Equal(t, []string{"12"}, fvStrings(dbh2.field))

	plain, err := carried.NewSibling(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "1-0.8-2", plain.Path.String())
	dbh3, _ := plain.Field("dbh")
	assert.Equal(t, []string{""}, fvStrings(dbh3.field), "nothing carried without the flag")
}
