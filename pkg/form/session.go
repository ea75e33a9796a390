package form

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/fieldform/internal/logging"
	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/ports"
	"github.com/aretw0/fieldform/pkg/tree"
	"github.com/google/uuid"
)

// Session is one form-filling session. Every operation takes it explicitly;
// there is no package-level state.
type Session struct {
	ID string

	schema ports.Metamodel
	record ports.Record
	tree   *tree.DataTree
	logger *slog.Logger
	hooks  domain.Hooks
	now    func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session id (default: random UUID).
func WithID(id string) Option {
	return func(s *Session) {
		s.ID = id
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithTree resumes from a previously restored tree.
func WithTree(t *tree.DataTree) Option {
	return func(s *Session) {
		s.tree = t
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession creates a session over a metamodel and the record it fills.
func NewSession(schema ports.Metamodel, record ports.Record, opts ...Option) *Session {
	s := &Session{
		schema: schema,
		record: record,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.tree == nil {
		s.tree = tree.New()
	}
	s.logger = s.logger.With("session_id", s.ID)
	return s
}

// Schema returns the metamodel the session was built with.
func (s *Session) Schema() ports.Metamodel { return s.schema }

// Record returns the record being filled.
func (s *Session) Record() ports.Record { return s.record }

// Tree returns the session cache.
func (s *Session) Tree() *tree.DataTree { return s.tree }

// RootPath is the path of the form root screen.
func (s *Session) RootPath() domain.ScreenPath {
	return domain.RootPath(s.schema.Root().ID)
}

// Snapshot captures the session cache for persistence.
func (s *Session) Snapshot() *tree.Snapshot {
	return &tree.Snapshot{
		SessionID: s.ID,
		FormID:    s.schema.Root().ID,
		Nodes:     s.tree.Export(),
	}
}

func (s *Session) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: s.now(), Type: t, SessionID: s.ID}
}

func (s *Session) emitScreenOpen(ctx context.Context, path domain.ScreenPath, restored bool) {
	if s.hooks.OnScreenOpen == nil {
		return
	}
	s.hooks.OnScreenOpen(ctx, &domain.ScreenEvent{
		EventBase: s.base(domain.EventScreenOpen),
		Path:      path.String(),
		Restored:  restored,
	})
}

func (s *Session) emitCommit(ctx context.Context, ev *domain.CommitEvent) {
	if s.hooks.OnCommit == nil {
		return
	}
	ev.EventBase = s.base(domain.EventCommit)
	s.hooks.OnCommit(ctx, ev)
}

func (s *Session) emitNavigate(ctx context.Context, ev *domain.NavigateEvent) {
	if s.hooks.OnNavigate == nil {
		return
	}
	ev.EventBase = s.base(domain.EventNavigate)
	s.hooks.OnNavigate(ctx, ev)
}
