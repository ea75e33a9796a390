package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/fieldform/pkg/adapters/memory"
	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/form"
	"github.com/aretw0/fieldform/pkg/observability"
	"github.com/aretw0/fieldform/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, hooks domain.Hooks) *form.Session {
	t.Helper()
	m, err := schema.New(&domain.NodeDefinition{
		ID: 1, Name: "visit", Kind: domain.KindEntity,
		Children: []*domain.NodeDefinition{
			{ID: 2, Name: "temperature", Kind: domain.KindNumber},
			{ID: 3, Name: "symptom", Kind: domain.KindText, Multiple: true},
		},
	})
	require.NoError(t, err)
	return form.NewSession(m, memory.NewRecord("visit"), form.WithHooks(hooks))
}

func TestMetrics_CountEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	s := newSession(t, metrics.Hooks())
	ctx := context.Background()

	sc, err := s.OpenScreen(ctx, form.OpenRequest{DefinitionID: 1})
	require.NoError(t, err)
	temp, _ := sc.Field("temperature")
	require.NoError(t, temp.Edit(ctx, domain.TupleOf("38.2")))
	require.NoError(t, temp.Edit(ctx, domain.TupleOf("hot")))
	sym, _ := sc.Field("symptom")
	require.NoError(t, sym.Next(ctx))
	require.NoError(t, sym.Previous(ctx))
	_, err = s.OpenScreen(ctx, form.OpenRequest{DefinitionID: 1})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ScreenOpens.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ScreenOpens.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Commits.WithLabelValues("number", "written")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Commits.WithLabelValues("number", "empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Navigations.WithLabelValues("next")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Navigations.WithLabelValues("previous")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.InstancesAdded.WithLabelValues("3")))
}

func TestMetrics_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	second, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	second.Commits.WithLabelValues("text", "written").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(first.Commits.WithLabelValues("text", "written")))
}

func TestCombine_CallsEverySetInOrder(t *testing.T) {
	var calls []string
	a := domain.Hooks{OnCommit: func(context.Context, *domain.CommitEvent) { calls = append(calls, "a") }}
	b := domain.Hooks{OnCommit: func(context.Context, *domain.CommitEvent) { calls = append(calls, "b") }}
	var buf bytes.Buffer
	logs := observability.LogHooks(slog.New(slog.NewTextHandler(&buf, nil)))

	s := newSession(t, observability.Combine(a, domain.Hooks{}, b, logs))
	_, err := s.Commit(context.Background(), s.RootPath(), 2, 0, domain.TupleOf("37"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Contains(t, buf.String(), "msg=commit")
	assert.Contains(t, buf.String(), "written=true")
}
