// Package mcp exposes form sessions as Model Context Protocol tools, so an
// agent can fill a survey screen by screen.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/fieldform/internal/logging"
	"github.com/aretw0/fieldform/internal/presentation/tui"
	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/form"
	"github.com/aretw0/fieldform/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const schemaURI = "fieldform://schema"

// ScreenResult is returned by every screen tool.
type ScreenResult struct {
	SessionID string          `json:"session_id" jsonschema_description:"The session the screen belongs to"`
	Screen    form.ScreenView `json:"screen" jsonschema_description:"Fields and child entity lists of the current screen"`
	Markdown  string          `json:"markdown" jsonschema_description:"Human readable rendering of the screen"`
	Warning   string          `json:"warning,omitempty" jsonschema_description:"Set when a value was kept on screen but could not be written to the record"`
}

type StartArgs struct {
	SessionID string `json:"session_id,omitempty"`
}

type OpenScreenArgs struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path,omitempty"`
}

type EditFieldArgs struct {
	SessionID string   `json:"session_id"`
	Field     string   `json:"field"`
	Values    []string `json:"values"`
}

type NavigateArgs struct {
	SessionID string `json:"session_id"`
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

type OpenEntityArgs struct {
	SessionID string `json:"session_id"`
	Entity    string `json:"entity"`
	Index     *int   `json:"index,omitempty"`
}

type NewSiblingArgs struct {
	SessionID string `json:"session_id"`
	Carry     bool   `json:"carry,omitempty"`
}

// Server exposes a session manager as an MCP Server.
type Server struct {
	cursor    *session.Cursor
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(m *session.Manager, version string, opts ...Option) *Server {
	s := &Server{
		cursor:    session.NewCursor(m),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("fieldform-mcp", strings.TrimSpace(version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: start_session
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a form-filling session and return its root screen."),
		mcp.WithString("session_id", mcp.Description("Session ID to use (random when omitted)")),
		mcp.WithOutputSchema[ScreenResult](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	// TOOL: open_screen
	s.mcpServer.AddTool(mcp.NewTool("open_screen",
		mcp.WithDescription("Show the current screen of a session, or open the screen at a path such as 1-0.8-2."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("path", mcp.Description("Screen path to open (optional)")),
		mcp.WithOutputSchema[ScreenResult](),
	), mcp.NewStructuredToolHandler(s.handleOpenScreen))

	// TOOL: edit_field
	s.mcpServer.AddTool(mcp.NewTool("edit_field",
		mcp.WithDescription("Set the instance of a field shown on the current screen. Ranges and coordinates take two values, booleans take [\"true\"] or [\"false\"]. An empty string leaves a component empty."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Field name")),
		mcp.WithArray("values", mcp.Required(), mcp.Description("Raw components of the value"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithOutputSchema[ScreenResult](),
	), mcp.NewStructuredToolHandler(s.handleEditField))

	// TOOL: navigate_instance
	s.mcpServer.AddTool(mcp.NewTool("navigate_instance",
		mcp.WithDescription("Move a multiple field to its next or previous instance. Next past the last instance appends an empty one."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Field name")),
		mcp.WithString("direction", mcp.Required(), mcp.Enum("next", "previous")),
		mcp.WithOutputSchema[ScreenResult](),
	), mcp.NewStructuredToolHandler(s.handleNavigate))

	// TOOL: open_entity
	s.mcpServer.AddTool(mcp.NewTool("open_entity",
		mcp.WithDescription("Open an instance of a child entity listed on the current screen. Without an index a new instance is added."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("entity", mcp.Required(), mcp.Description("Child entity name")),
		mcp.WithNumber("index", mcp.Description("Instance index (optional)")),
		mcp.WithOutputSchema[ScreenResult](),
	), mcp.NewStructuredToolHandler(s.handleOpenEntity))

	// TOOL: new_sibling
	s.mcpServer.AddTool(mcp.NewTool("new_sibling",
		mcp.WithDescription("Leave the current entity instance and open a new instance of the same entity. With carry, the multiple fields shown now are copied to the new instance."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithBoolean("carry", mcp.Description("Seed the new instance with the multiple fields of the current one")),
		mcp.WithOutputSchema[ScreenResult](),
	), mcp.NewStructuredToolHandler(s.handleNewSibling))

	// TOOL: get_record
	s.mcpServer.AddTool(mcp.NewTool("get_record",
		mcp.WithDescription("Get the record filled so far as JSON."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dump, err := s.record(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		jsonBytes, _ := json.Marshal(dump)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args StartArgs) (ScreenResult, error) {
	sess, err := s.cursor.Manager().Start(ctx, args.SessionID)
	if err != nil {
		return ScreenResult{}, err
	}
	sc, err := s.cursor.Screen(ctx, sess.ID)
	return s.result(sess.ID, sc, err)
}

func (s *Server) handleOpenScreen(ctx context.Context, _ mcp.CallToolRequest, args OpenScreenArgs) (ScreenResult, error) {
	if args.Path == "" {
		sc, err := s.cursor.Screen(ctx, args.SessionID)
		return s.result(args.SessionID, sc, err)
	}
	path, err := domain.ParseInstancePath(args.Path)
	if err != nil {
		return ScreenResult{}, err
	}
	sc, err := s.cursor.Do(ctx, args.SessionID, func(ctx context.Context, sess *form.Session, sc *form.Screen) (*form.Screen, error) {
		sc.Suspend()
		return sess.OpenPath(ctx, path)
	})
	return s.result(args.SessionID, sc, err)
}

func (s *Server) handleEditField(ctx context.Context, _ mcp.CallToolRequest, args EditFieldArgs) (ScreenResult, error) {
	sc, err := s.cursor.Do(ctx, args.SessionID, func(ctx context.Context, _ *form.Session, sc *form.Screen) (*form.Screen, error) {
		b, ok := sc.Field(args.Field)
		if !ok {
			return nil, fmt.Errorf("no field %q on %s", args.Field, sc.Definition.Name)
		}
		return nil, b.Edit(ctx, domain.TupleOf(args.Values...))
	})
	return s.result(args.SessionID, sc, err)
}

func (s *Server) handleNavigate(ctx context.Context, _ mcp.CallToolRequest, args NavigateArgs) (ScreenResult, error) {
	if args.Direction != "next" && args.Direction != "previous" {
		return ScreenResult{}, fmt.Errorf("direction must be next or previous, got %q", args.Direction)
	}
	sc, err := s.cursor.Do(ctx, args.SessionID, func(ctx context.Context, _ *form.Session, sc *form.Screen) (*form.Screen, error) {
		b, ok := sc.Field(args.Field)
		if !ok {
			return nil, fmt.Errorf("no field %q on %s", args.Field, sc.Definition.Name)
		}
		if !b.Multiple() {
			return nil, fmt.Errorf("%s is not multiple", args.Field)
		}
		if args.Direction == "next" {
			return nil, b.Next(ctx)
		}
		return nil, b.Previous(ctx)
	})
	return s.result(args.SessionID, sc, err)
}

func (s *Server) handleOpenEntity(ctx context.Context, _ mcp.CallToolRequest, args OpenEntityArgs) (ScreenResult, error) {
	sc, err := s.cursor.Do(ctx, args.SessionID, func(ctx context.Context, _ *form.Session, sc *form.Screen) (*form.Screen, error) {
		list, ok := sc.Entity(args.Entity)
		if !ok {
			return nil, fmt.Errorf("no entity %q on %s", args.Entity, sc.Definition.Name)
		}
		sc.Suspend()
		if args.Index == nil {
			return list.Add(ctx)
		}
		if *args.Index < 0 {
			return nil, fmt.Errorf("invalid index %d", *args.Index)
		}
		return list.Enter(ctx, *args.Index, nil)
	})
	return s.result(args.SessionID, sc, err)
}

func (s *Server) handleNewSibling(ctx context.Context, _ mcp.CallToolRequest, args NewSiblingArgs) (ScreenResult, error) {
	sc, err := s.cursor.Do(ctx, args.SessionID, func(ctx context.Context, _ *form.Session, sc *form.Screen) (*form.Screen, error) {
		return sc.NewSibling(ctx, args.Carry)
	})
	return s.result(args.SessionID, sc, err)
}

// result reports commit errors as warnings next to the screen, since the
// value stays cached and the agent can correct it.
func (s *Server) result(id string, sc *form.Screen, err error) (ScreenResult, error) {
	var cerr *domain.CommitError
	if err != nil && (sc == nil || !errors.As(err, &cerr)) {
		s.logger.Debug("MCP tool failed", "session_id", id, "err", err)
		return ScreenResult{}, err
	}
	res := ScreenResult{
		SessionID: id,
		Screen:    sc.View(),
		Markdown:  tui.ScreenMarkdown(sc),
	}
	if cerr != nil {
		res.Warning = cerr.Error()
	}
	return res, nil
}

func (s *Server) record(ctx context.Context, id string) (map[string]any, error) {
	var dump map[string]any
	err := s.cursor.Manager().WithSession(ctx, id, func(_ context.Context, sess *form.Session) error {
		d, ok := sess.Record().(interface{ Dump() map[string]any })
		if !ok {
			return fmt.Errorf("record of %s cannot be inspected", id)
		}
		dump = d.Dump()
		return nil
	})
	return dump, err
}

func (s *Server) registerResources() {
	// EXPOSE: fieldform://schema
	s.mcpServer.AddResource(mcp.NewResource(schemaURI, "Form Metamodel",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.cursor.Manager().Schema().Root())
		if err != nil {
			return nil, fmt.Errorf("failed to encode schema: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      schemaURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
