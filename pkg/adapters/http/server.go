// Package http exposes form sessions over a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/fieldform/internal/logging"
	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/form"
	"github.com/aretw0/fieldform/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var errNotFound = errors.New("not found")

// Server serves sessions of one session.Manager.
type Server struct {
	Cursor  *session.Cursor
	Streams *StreamManager

	gatherer prometheus.Gatherer
	version  string
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStreams shares a StreamManager whose Hooks feed the session manager.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics serves g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithVersion is reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = strings.TrimSpace(v)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for the sessions of m.
func NewHandler(m *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Cursor:  session.NewCursor(m),
		version: "dev",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/schema", s.GetSchema)
	r.Get("/events", s.SubscribeEvents)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.DeleteSession)
			r.Get("/screen", s.GetScreen)
			r.Post("/open", s.OpenPath)
			r.Post("/back", s.Back)
			r.Post("/sibling", s.NewSibling)
			r.Get("/record", s.GetRecord)
			r.Put("/fields/{name}", s.EditField)
			r.Post("/fields/{name}/next", s.NextInstance)
			r.Post("/fields/{name}/previous", s.PreviousInstance)
			r.Post("/entities/{name}", s.AddEntity)
			r.Post("/entities/{name}/{index}", s.EnterEntity)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ScreenResponse is returned by every screen operation.
type ScreenResponse struct {
	SessionID string          `json:"session_id"`
	Screen    form.ScreenView `json:"screen"`
}

// ErrorResponse carries the failure and, for commit errors, the screen as
// cached after the failed write.
type ErrorResponse struct {
	Error  string           `json:"error"`
	Kind   string           `json:"kind,omitempty"`
	Screen *form.ScreenView `json:"screen,omitempty"`
}

// CreateSessionRequest optionally names the new session.
type CreateSessionRequest struct {
	ID string `json:"id"`
}

// EditRequest holds the raw components of the edited instance; null leaves a
// component empty.
type EditRequest struct {
	Values domain.ValueTuple `json:"values"`
}

// OpenRequest addresses a screen by path, e.g. "1-0.8-2".
type OpenRequest struct {
	Path string `json:"path"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	root := s.Cursor.Manager().Schema().Root()
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "fieldform-http",
		"version": s.version,
		"form":    root.Name,
	})
}

// GetSchema handles the GET /schema request.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Cursor.Manager().Schema().Root())
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Cursor.Manager().List(r.Context())
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		s.badRequest(w, err)
		return
	}
	sess, err := s.Cursor.Manager().Start(r.Context(), body.ID)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	sc, err := s.Cursor.Screen(r.Context(), sess.ID)
	s.respond(w, http.StatusCreated, sess.ID, sc, err)
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Cursor.Manager().Delete(r.Context(), id); err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.Cursor.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}

// GetScreen handles the GET /sessions/{id}/screen request.
func (s *Server) GetScreen(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sc, err := s.Cursor.Screen(r.Context(), id)
	s.respond(w, http.StatusOK, id, sc, err)
}

// OpenPath handles the POST /sessions/{id}/open request.
func (s *Server) OpenPath(w http.ResponseWriter, r *http.Request) {
	var body OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, err)
		return
	}
	path, err := domain.ParseInstancePath(body.Path)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	s.screenOp(w, r, func(ctx context.Context, sess *form.Session, sc *form.Screen) (*form.Screen, error) {
		sc.Suspend()
		return sess.OpenPath(ctx, path)
	})
}

// Back handles the POST /sessions/{id}/back request.
func (s *Server) Back(w http.ResponseWriter, r *http.Request) {
	s.screenOp(w, r, func(ctx context.Context, _ *form.Session, sc *form.Screen) (*form.Screen, error) {
		if sc.Path.IsRoot() {
			return nil, fmt.Errorf("%w: already at the form root", errBadRequest)
		}
		sc.Suspend()
		return sc.Parent(ctx)
	})
}

// NewSibling handles the POST /sessions/{id}/sibling request. The carry
// query parameter seeds the new instance with the multiple fields on screen.
func (s *Server) NewSibling(w http.ResponseWriter, r *http.Request) {
	carry := false
	if v := r.URL.Query().Get("carry"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.badRequest(w, fmt.Errorf("invalid carry %q", v))
			return
		}
		carry = b
	}
	s.screenOp(w, r, func(ctx context.Context, _ *form.Session, sc *form.Screen) (*form.Screen, error) {
		if sc.Path.IsRoot() {
			return nil, fmt.Errorf("%w: the form root has no siblings", errBadRequest)
		}
		return sc.NewSibling(ctx, carry)
	})
}

// EditField handles the PUT /sessions/{id}/fields/{name} request.
func (s *Server) EditField(w http.ResponseWriter, r *http.Request) {
	var body EditRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	s.screenOp(w, r, func(ctx context.Context, _ *form.Session, sc *form.Screen) (*form.Screen, error) {
		b, err := binding(sc, name)
		if err != nil {
			return nil, err
		}
		return nil, b.Edit(ctx, body.Values)
	})
}

// NextInstance handles the POST /sessions/{id}/fields/{name}/next request.
func (s *Server) NextInstance(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, true)
}

// PreviousInstance handles the POST /sessions/{id}/fields/{name}/previous request.
func (s *Server) PreviousInstance(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, false)
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request, forward bool) {
	name := chi.URLParam(r, "name")
	s.screenOp(w, r, func(ctx context.Context, _ *form.Session, sc *form.Screen) (*form.Screen, error) {
		b, err := binding(sc, name)
		if err != nil {
			return nil, err
		}
		if !b.Multiple() {
			return nil, fmt.Errorf("%w: %s is not multiple", errBadRequest, name)
		}
		if forward {
			return nil, b.Next(ctx)
		}
		return nil, b.Previous(ctx)
	})
}

// AddEntity handles the POST /sessions/{id}/entities/{name} request.
func (s *Server) AddEntity(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.screenOp(w, r, func(ctx context.Context, _ *form.Session, sc *form.Screen) (*form.Screen, error) {
		list, err := entity(sc, name)
		if err != nil {
			return nil, err
		}
		if !list.CanAdd() {
			return nil, fmt.Errorf("%w: %s accepts a single instance", errBadRequest, name)
		}
		sc.Suspend()
		return list.Add(ctx)
	})
}

// EnterEntity handles the POST /sessions/{id}/entities/{name}/{index} request.
func (s *Server) EnterEntity(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		s.badRequest(w, fmt.Errorf("invalid index %q", chi.URLParam(r, "index")))
		return
	}
	s.screenOp(w, r, func(ctx context.Context, _ *form.Session, sc *form.Screen) (*form.Screen, error) {
		list, err := entity(sc, name)
		if err != nil {
			return nil, err
		}
		sc.Suspend()
		return list.Enter(ctx, index, nil)
	})
}

// GetRecord handles the GET /sessions/{id}/record request.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var dump map[string]any
	err := s.Cursor.Manager().WithSession(r.Context(), id, func(_ context.Context, sess *form.Session) error {
		d, ok := sess.Record().(interface{ Dump() map[string]any })
		if !ok {
			return fmt.Errorf("record of %s cannot be inspected", id)
		}
		dump = d.Dump()
		return nil
	})
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, dump)
}

// SubscribeEvents handles the GET /events?session_id= request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	s.logger.Info("SSE: Subscribing to Session Updates", "session_id", sessionID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// -- Helpers --

var errBadRequest = errors.New("bad request")

func (s *Server) screenOp(w http.ResponseWriter, r *http.Request, fn func(context.Context, *form.Session, *form.Screen) (*form.Screen, error)) {
	id := chi.URLParam(r, "id")
	sc, err := s.Cursor.Do(r.Context(), id, fn)
	s.respond(w, http.StatusOK, id, sc, err)
}

func (s *Server) respond(w http.ResponseWriter, status int, id string, sc *form.Screen, err error) {
	if err != nil {
		var view *form.ScreenView
		if sc != nil {
			v := sc.View()
			view = &v
		}
		s.writeError(w, err, view)
		return
	}
	s.writeJSON(w, status, ScreenResponse{SessionID: id, Screen: sc.View()})
}

func binding(sc *form.Screen, name string) (*form.Binding, error) {
	b, ok := sc.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: field %q on %s", errNotFound, name, sc.Definition.Name)
	}
	return b, nil
}

func entity(sc *form.Screen, name string) (*form.EntityList, error) {
	l, ok := sc.Entity(name)
	if !ok {
		return nil, fmt.Errorf("%w: entity %q on %s", errNotFound, name, sc.Definition.Name)
	}
	return l, nil
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err), nil)
}

func (s *Server) writeError(w http.ResponseWriter, err error, view *form.ScreenView) {
	resp := ErrorResponse{Error: err.Error(), Screen: view}
	status := http.StatusInternalServerError

	var cerr *domain.CommitError
	switch {
	case errors.As(err, &cerr):
		status = http.StatusUnprocessableEntity
		resp.Kind = string(cerr.Kind)
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, errNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrFormMismatch), errors.Is(err, domain.ErrSessionExists):
		status = http.StatusConflict
	case errors.Is(err, errBadRequest), errors.Is(err, domain.ErrMalformedPath),
		errors.Is(err, domain.ErrParentNotFound), errors.Is(err, domain.ErrUnknownDefinition):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
