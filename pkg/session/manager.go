package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/fieldform/internal/logging"
	"github.com/aretw0/fieldform/pkg/adapters/memory"
	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/form"
	"github.com/aretw0/fieldform/pkg/ports"
	"github.com/aretw0/fieldform/pkg/tree"
	"github.com/google/uuid"
)

// DefaultLockTTL is how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// RecordFactory returns the record a session writes into.
type RecordFactory func(sessionID string) ports.Record

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store   ports.SnapshotStore
	schema  ports.Metamodel
	records RecordFactory

	mu    sync.Mutex            // Global lock for the maps
	locks map[string]*lockEntry // Active locks
	live  map[string]*form.Session

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	hooks   domain.Hooks
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager and the sessions it creates.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHooks installs observability hooks on every session.
func WithHooks(hooks domain.Hooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithRecords sets where sessions write their values. The default is a fresh
// in-memory record per session.
func WithRecords(f RecordFactory) Option {
	return func(m *Manager) {
		m.records = f
	}
}

// NewManager creates a session manager for one form.
func NewManager(store ports.SnapshotStore, schema ports.Metamodel, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		schema:  schema,
		locks:   make(map[string]*lockEntry),
		live:    make(map[string]*form.Session),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.records == nil {
		rootName := schema.Root().Name
		m.records = func(string) ports.Record { return memory.NewRecord(rootName) }
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Start creates a session and persists its empty tree to reserve the ID.
// An empty id picks a random one.
func (m *Manager) Start(ctx context.Context, id string) (*form.Session, error) {
	if id == "" {
		id = uuid.New().String()
	}
	var s *form.Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		if _, err := m.store.Load(ctx, id); err == nil {
			return fmt.Errorf("start %s: %w", id, domain.ErrSessionExists)
		} else if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}
		var err error
		s, err = m.start(ctx, id)
		return err
	})
	return s, err
}

// Resume returns the live session for id, restoring it from the store if this
// process has not seen it yet.
func (m *Manager) Resume(ctx context.Context, id string) (*form.Session, error) {
	var s *form.Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		s, err = m.resume(ctx, id)
		return err
	})
	return s, err
}

// ResumeOrStart resumes id, starting it when the store does not know it.
func (m *Manager) ResumeOrStart(ctx context.Context, id string) (*form.Session, error) {
	var s *form.Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		s, err = m.resume(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			s, err = m.start(ctx, id)
		}
		return err
	})
	return s, err
}

// Checkpoint persists the current tree of a live session.
func (m *Manager) Checkpoint(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		s, ok := m.lookup(id)
		if !ok {
			return fmt.Errorf("checkpoint %s: %w", id, domain.ErrSessionNotFound)
		}
		return m.store.Save(ctx, id, s.Snapshot())
	})
}

// Close checkpoints a live session and drops it from memory. The snapshot stays
// in the store.
func (m *Manager) Close(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		s, ok := m.lookup(id)
		if !ok {
			return nil
		}
		if err := m.store.Save(ctx, id, s.Snapshot()); err != nil {
			return fmt.Errorf("close %s: %w", id, err)
		}
		m.forget(id)
		m.logger.Info("session closed", "session_id", id)
		return nil
	})
}

// Delete removes the session from memory and from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		m.forget(id)
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// Schema returns the form metamodel served by this manager.
func (m *Manager) Schema() ports.Metamodel {
	return m.schema
}

// WithSession runs fn with exclusive access to the session and checkpoints it
// afterwards, even when fn fails, so committed values are never lost.
func (m *Manager) WithSession(ctx context.Context, id string, fn func(context.Context, *form.Session) error) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		s, err := m.resume(ctx, id)
		if err != nil {
			return err
		}
		fnErr := fn(ctx, s)
		if err := m.store.Save(ctx, id, s.Snapshot()); err != nil {
			return errors.Join(fnErr, fmt.Errorf("checkpoint %s: %w", id, err))
		}
		return fnErr
	})
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// start must run under the session lock.
func (m *Manager) start(ctx context.Context, id string) (*form.Session, error) {
	s := m.newSession(id, nil)
	if err := m.store.Save(ctx, id, s.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	m.keep(s)
	m.logger.Info("session started", "session_id", id)
	return s, nil
}

// resume must run under the session lock.
func (m *Manager) resume(ctx context.Context, id string) (*form.Session, error) {
	if s, ok := m.lookup(id); ok {
		return s, nil
	}
	snap, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resume %s: %w", id, err)
	}
	if root := m.schema.Root(); snap.FormID != root.ID {
		return nil, fmt.Errorf("resume %s: %w: form %d, want %d", id, domain.ErrFormMismatch, snap.FormID, root.ID)
	}
	t, err := tree.Restore(snap.Nodes)
	if err != nil {
		return nil, fmt.Errorf("resume %s: %w", id, err)
	}
	s := m.newSession(id, t)
	if err := s.Replay(); err != nil {
		m.logger.Warn("record replay incomplete", "session_id", id, "err", err)
	}
	m.keep(s)
	m.logger.Debug("session restored", "session_id", id, "nodes", t.Len())
	return s, nil
}

func (m *Manager) newSession(id string, t *tree.DataTree) *form.Session {
	opts := []form.Option{
		form.WithID(id),
		form.WithLogger(m.logger),
		form.WithHooks(m.hooks),
	}
	if t != nil {
		opts = append(opts, form.WithTree(t))
	}
	return form.NewSession(m.schema, m.records(id), opts...)
}

func (m *Manager) lookup(id string) (*form.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live[id]
	return s, ok
}

func (m *Manager) keep(s *form.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live[s.ID] = s
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.live, id)
}
