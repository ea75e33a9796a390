package session

import (
	"context"
	"sync"

	"github.com/aretw0/fieldform/pkg/form"
)

// Cursor remembers which screen each session is looking at, for hosts that
// serve many sessions over independent requests.
type Cursor struct {
	manager *Manager

	mu      sync.Mutex
	screens map[string]cursorEntry
}

type cursorEntry struct {
	session *form.Session
	screen  *form.Screen
}

// NewCursor tracks screens of sessions owned by m.
func NewCursor(m *Manager) *Cursor {
	return &Cursor{manager: m, screens: make(map[string]cursorEntry)}
}

// Manager returns the session manager behind the cursor.
func (c *Cursor) Manager() *Manager { return c.manager }

// Do runs fn under the session lock with the current screen, opening the form
// root on first use. A non-nil screen returned by fn becomes current. The
// session is checkpointed afterwards.
func (c *Cursor) Do(ctx context.Context, id string, fn func(context.Context, *form.Session, *form.Screen) (*form.Screen, error)) (*form.Screen, error) {
	var current *form.Screen
	err := c.manager.WithSession(ctx, id, func(ctx context.Context, s *form.Session) error {
		sc, err := c.current(ctx, id, s)
		if err != nil {
			return err
		}
		next, err := fn(ctx, s, sc)
		if next != nil {
			sc = next
			c.set(id, s, sc)
		}
		current = sc
		return err
	})
	return current, err
}

// Screen returns the current screen of id.
func (c *Cursor) Screen(ctx context.Context, id string) (*form.Screen, error) {
	return c.Do(ctx, id, func(context.Context, *form.Session, *form.Screen) (*form.Screen, error) {
		return nil, nil
	})
}

// Forget drops the remembered screen, e.g. after the session was deleted.
func (c *Cursor) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.screens, id)
}

// current must run under the session lock. A screen bound to a session
// instance the manager no longer serves is reopened at the same path.
func (c *Cursor) current(ctx context.Context, id string, s *form.Session) (*form.Screen, error) {
	c.mu.Lock()
	entry, ok := c.screens[id]
	c.mu.Unlock()
	if ok && entry.session == s {
		return entry.screen, nil
	}

	path := s.RootPath()
	if ok {
		path = entry.screen.Path
	}
	sc, err := s.OpenPath(ctx, path)
	if err != nil {
		return nil, err
	}
	c.set(id, s, sc)
	return sc, nil
}

func (c *Cursor) set(id string, s *form.Session, sc *form.Screen) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screens[id] = cursorEntry{session: s, screen: sc}
}
