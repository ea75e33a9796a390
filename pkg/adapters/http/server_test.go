package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/fieldform/internal/testutils"
	"github.com/aretw0/fieldform/pkg/adapters/memory"
	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/form"
	"github.com/aretw0/fieldform/pkg/observability"
	"github.com/aretw0/fieldform/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler http.Handler
	streams *StreamManager
	reg     *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	streams := NewStreamManager(nil)
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	mgr := session.NewManager(memory.NewStore(), testutils.PlotModel(t),
		session.WithHooks(observability.Combine(streams.Hooks(), metrics.Hooks())))
	return &fixture{
		handler: NewHandler(mgr, WithStreams(streams), WithMetrics(reg), WithVersion("1.0.0\n")),
		streams: streams,
		reg:     reg,
	}
}

func (f *fixture) do(t *testing.T, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, httptest.NewRequest(method, url, rd))
	return w
}

func decodeScreen(t *testing.T, w *httptest.ResponseRecorder) ScreenResponse {
	t.Helper()
	var resp ScreenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func fieldView(t *testing.T, v form.ScreenView, name string) form.FieldView {
	t.Helper()
	for _, f := range v.Fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("field %s not on screen %s", name, v.Path)
	return form.FieldView{}
}

func TestServer_SessionLifecycle(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/sessions", CreateSessionRequest{ID: "s1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeScreen(t, w)
	assert.Equal(t, "s1", created.SessionID)
	assert.Equal(t, "1-0", created.Screen.Path)

	w = f.do(t, http.MethodPost, "/sessions", CreateSessionRequest{ID: "s1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sessions":["s1"]}`, w.Body.String())

	w = f.do(t, http.MethodDelete, "/sessions/s1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/sessions/s1/screen", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CreateWithoutBody(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, decodeScreen(t, w).SessionID)
}

func TestServer_EditAndNavigate(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/sessions", CreateSessionRequest{ID: "s1"}).Code)

	w := f.do(t, http.MethodPut, "/sessions/s1/fields/area", EditRequest{Values: domain.TupleOf("12,5")})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	area := fieldView(t, decodeScreen(t, w).Screen, "area")
	assert.Equal(t, domain.KindNumber, area.Kind)

	w = f.do(t, http.MethodPut, "/sessions/s1/fields/notes", EditRequest{Values: domain.TupleOf("first")})
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodPost, "/sessions/s1/fields/notes/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	notes := fieldView(t, decodeScreen(t, w).Screen, "notes")
	assert.Equal(t, 1, notes.Index)
	assert.Equal(t, 2, notes.Size)

	w = f.do(t, http.MethodPost, "/sessions/s1/fields/notes/previous", nil)
	require.Equal(t, http.StatusOK, w.Code)
	notes = fieldView(t, decodeScreen(t, w).Screen, "notes")
	assert.Equal(t, 0, notes.Index)
	assert.Equal(t, []string{"first"}, notes.Display.Text)

	w = f.do(t, http.MethodPost, "/sessions/s1/fields/area/next", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPut, "/sessions/s1/fields/nope", EditRequest{Values: domain.TupleOf("x")})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/sessions/s1/record", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"notes":"first"`)
}

func TestServer_Entities(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/sessions", CreateSessionRequest{ID: "s1"}).Code)

	w := f.do(t, http.MethodPost, "/sessions/s1/entities/tree", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1-0.4-0", decodeScreen(t, w).Screen.Path)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, "/sessions/s1/fields/species", EditRequest{Values: domain.TupleOf("Oak")}).Code)

	w = f.do(t, http.MethodPost, "/sessions/s1/back", nil)
	require.Equal(t, http.StatusOK, w.Code)
	root := decodeScreen(t, w).Screen
	assert.Equal(t, "1-0", root.Path)
	require.Len(t, root.Entities, 1)
	require.Len(t, root.Entities[0].Rows, 1)
	assert.Equal(t, "Oak", root.Entities[0].Rows[0].Label)

	w = f.do(t, http.MethodPost, "/sessions/s1/back", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/sessions/s1/entities/tree/0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Oak"}, fieldView(t, decodeScreen(t, w).Screen, "species").Display.Text)

	w = f.do(t, http.MethodPost, "/sessions/s1/open", OpenRequest{Path: "1-0"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1-0", decodeScreen(t, w).Screen.Path)

	w = f.do(t, http.MethodPost, "/sessions/s1/open", OpenRequest{Path: "1-0.x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/sessions/s1/entities/tree/minus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_InfoSchemaMetrics(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/health", nil)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/info", nil)
	assert.JSONEq(t, `{"app":"fieldform-http","version":"1.0.0","form":"plot"}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/schema", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"plot"`)

	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/sessions", CreateSessionRequest{ID: "s1"}).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, "/sessions/s1/fields/area", EditRequest{Values: domain.TupleOf("3")}).Code)

	w = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fieldform_commits_total")
}

func TestSubscribeEvents_Session(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/sessions", CreateSessionRequest{ID: "sess-1"}).Code)

	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?session_id=sess-1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 16)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	next := func() string {
		for {
			select {
			case l, ok := <-lines:
				require.True(t, ok, "stream closed")
				if strings.HasPrefix(l, "data: ") {
					return l
				}
			case <-time.After(2 * time.Second):
				t.Fatal("timed out waiting for event")
			}
		}
	}

	assert.Equal(t, "data: connected", next())

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, "/sessions/sess-1/fields/notes", EditRequest{Values: domain.TupleOf("a")}).Code)
	assert.Contains(t, next(), `"type":"commit"`)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/sessions/sess-1/fields/notes/next", nil).Code)
	nav := next()
	assert.Contains(t, nav, `"type":"navigate"`)
	assert.Contains(t, nav, `"grew":true`)
}

func TestSubscribeEvents_RequiresSession(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/events", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_NewSibling(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/sessions", CreateSessionRequest{ID: "s1"}).Code)

	w := f.do(t, http.MethodPost, "/sessions/s1/sibling", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "the root has no siblings")

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/sessions/s1/entities/tree", nil).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, "/sessions/s1/fields/stem", EditRequest{Values: domain.TupleOf("7")}).Code)

	w = f.do(t, http.MethodPost, "/sessions/s1/sibling?carry=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/sessions/s1/sibling?carry=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	carried := decodeScreen(t, w).Screen
	assert.Equal(t, "1-0.4-1", carried.Path)
	assert.Equal(t, []string{"7"}, fieldView(t, carried, "stem").Display.Text)

	w = f.do(t, http.MethodPost, "/sessions/s1/sibling", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plain := decodeScreen(t, w).Screen
	assert.Equal(t, "1-0.4-2", plain.Path)
	assert.NotContains(t, fieldView(t, plain, "stem").Display.Text, "7")
}
