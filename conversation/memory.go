package conversation

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type originState struct {
	current       string
	conversations map[string]*Conversation
}

// MemoryStore is an in-memory Store keyed by origin. Useful for tests
// and for hosts that keep conversation state elsewhere.
type MemoryStore struct {
	origins map[string]*originState
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{origins: make(map[string]*originState)}
}

// StartConversation creates a new conversation for an origin, makes it
// current, and returns its id. Ids are UUIDv7, so they sort by creation
// time.
func (s *MemoryStore) StartConversation(origin string) string {
	id := uuid.Must(uuid.NewV7()).String()

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.origins[origin]
	if !ok {
		state = &originState{conversations: make(map[string]*Conversation)}
		s.origins[origin] = state
	}
	state.conversations[id] = &Conversation{ID: id}
	state.current = id

	return id
}

func (s *MemoryStore) CurrentConversationID(_ context.Context, origin string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.origins[origin]
	if !ok || state.current == "" {
		return "", ErrNoConversation
	}
	return state.current, nil
}

func (s *MemoryStore) Conversation(_ context.Context, origin, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.origins[origin]
	if !ok {
		return nil, ErrConversationNotFound
	}
	conv, ok := state.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}

	copied := *conv
	return &copied, nil
}

func (s *MemoryStore) UpdateConversation(_ context.Context, origin, id, history string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.origins[origin]
	if !ok {
		return ErrConversationNotFound
	}
	conv, ok := state.conversations[id]
	if !ok {
		return ErrConversationNotFound
	}

	conv.History = history
	return nil
}
