package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExists is returned when starting a session under an ID already in use.
var ErrSessionExists = errors.New("session already exists")

// ErrMalformedPath is returned when a screen path string cannot be parsed.
var ErrMalformedPath = errors.New("malformed screen path")

// ErrUnknownDefinition is returned when a definition id is not part of the metamodel.
var ErrUnknownDefinition = errors.New("unknown definition")

// ErrParentNotFound is returned when the record entity owning a path cannot be resolved.
var ErrParentNotFound = errors.New("parent entity not found")

// ErrIndexSkipped is returned when a field value is written past its next free index.
var ErrIndexSkipped = errors.New("instance index skips ahead of field size")

// ErrSingleCardinality is returned when a second instance is written to a single field.
var ErrSingleCardinality = errors.New("field accepts a single instance")

// ErrFormMismatch is returned when a stored session belongs to a different form.
var ErrFormMismatch = errors.New("session belongs to another form")

// CommitErrorKind classifies commit failures.
type CommitErrorKind string

const (
	CommitLookupFailed      CommitErrorKind = "lookup_failed"      // Parent entity could not be resolved
	CommitUnknownDefinition CommitErrorKind = "unknown_definition" // Definition missing from the metamodel
	CommitCacheWrite        CommitErrorKind = "cache_write"        // Session field value rejected the tuple
	CommitRecordWrite       CommitErrorKind = "record_write"       // Record model rejected the value
)

// CommitError reports a failed write of a field instance.
// The session cache may already hold the tuple when Kind is CommitLookupFailed
// or CommitRecordWrite; callers decide whether to retry, log or abort.
type CommitError struct {
	Kind         CommitErrorKind
	Path         string
	DefinitionID int
	Index        int
	Err          error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit %s (path=%s definition=%d index=%d): %v",
		e.Kind, e.Path, e.DefinitionID, e.Index, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
