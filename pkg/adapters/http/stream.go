package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/fieldform/internal/logging"
	"github.com/aretw0/fieldform/pkg/domain"
)

// StreamManager fans session events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// Hooks publishes commit and navigation events to subscribers of the session.
func (sm *StreamManager) Hooks() domain.Hooks {
	return domain.Hooks{
		OnCommit: func(_ context.Context, e *domain.CommitEvent) {
			sm.publish(e.SessionID, commitMessage{
				Type: string(e.Type), Path: e.Path, DefinitionID: e.DefinitionID,
				Index: e.Index, Written: e.Written, Error: errString(e.Err),
			})
		},
		OnNavigate: func(_ context.Context, e *domain.NavigateEvent) {
			sm.publish(e.SessionID, e)
		},
	}
}

type commitMessage struct {
	Type         string `json:"type"`
	Path         string `json:"path"`
	DefinitionID int    `json:"definition_id"`
	Index        int    `json:"index"`
	Written      bool   `json:"written"`
	Error        string `json:"error,omitempty"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (sm *StreamManager) publish(sessionID string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		sm.logger.Warn("SSE: event encode failed", "session_id", sessionID, "err", err)
		return
	}
	sm.Broadcast(sessionID, string(b))
}
