package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventScreenOpen EventType = "screen_open"
	EventCommit     EventType = "commit"
	EventNavigate   EventType = "navigate"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// ScreenEvent is emitted when a screen is built for a path.
type ScreenEvent struct {
	EventBase
	Path     string `json:"path"`
	Restored bool   `json:"restored"`
}

// CommitEvent is emitted after every commit attempt.
type CommitEvent struct {
	EventBase
	Path         string `json:"path"`
	DefinitionID int    `json:"definition_id"`
	Kind         Kind   `json:"kind"`
	Index        int    `json:"index"`
	Written      bool   `json:"written"` // false when the tuple was empty and the record was left alone
	Err          error  `json:"-"`
}

// NavigateEvent is emitted when an instance navigator moves.
type NavigateEvent struct {
	EventBase
	Path         string `json:"path"`
	DefinitionID int    `json:"definition_id"`
	From         int    `json:"from"`
	To           int    `json:"to"`
	Grew         bool   `json:"grew"` // a new instance was appended
}

// Hooks defines callbacks for engine observability.
type Hooks struct {
	OnScreenOpen func(context.Context, *ScreenEvent)
	OnCommit     func(context.Context, *CommitEvent)
	OnNavigate   func(context.Context, *NavigateEvent)
}
