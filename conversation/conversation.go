// Package conversation provides access to per-origin conversation state:
// the current conversation id, the stored conversation record, and its
// serialized history log. The splitter appends assistant history records
// through a Store; hosts plug in their own backend or use the bundled
// in-memory and file-backed implementations.
package conversation

import (
	"context"
	"errors"
)

// Sentinel errors for store operations.
var (
	ErrNoConversation       = errors.New("no current conversation")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrLoadFailed           = errors.New("load failed")
	ErrSaveFailed           = errors.New("save failed")
)

// Conversation is one stored conversation record. History is the
// serialized JSON list of history messages, held as an opaque string the
// way the external store persists it.
type Conversation struct {
	ID      string `json:"id"`
	History string `json:"history,omitempty"`
}

// Store is the external conversation backend, keyed by origin identifier.
// Implementations must be safe for concurrent use; ordering between
// concurrent updates to the same origin is the store's concern.
type Store interface {
	// CurrentConversationID returns the active conversation id for an
	// origin, or ErrNoConversation when none is active.
	CurrentConversationID(ctx context.Context, origin string) (string, error)
	// Conversation returns the stored record for an origin and id, or
	// ErrConversationNotFound.
	Conversation(ctx context.Context, origin, id string) (*Conversation, error)
	// UpdateConversation replaces the serialized history of a stored
	// conversation.
	UpdateConversation(ctx context.Context, origin, id, history string) error
}
