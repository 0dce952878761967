package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// FileStore is a Store persisting one JSON document per origin under a
// root directory. Origin identifiers are path-escaped to form filenames,
// and writes go through a temp file and rename so a crash never leaves a
// half-written document.
type FileStore struct {
	root string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore rooted at the given directory. The
// directory is created on first write.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

type originDocument struct {
	Current       string                   `json:"current,omitempty"`
	Conversations map[string]*Conversation `json:"conversations"`
}

func (s *FileStore) path(origin string) string {
	return filepath.Join(s.root, url.PathEscape(origin)+".json")
}

func (s *FileStore) load(origin string) (*originDocument, error) {
	data, err := os.ReadFile(s.path(origin))
	if err != nil {
		if os.IsNotExist(err) {
			return &originDocument{Conversations: make(map[string]*Conversation)}, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, origin, err)
	}

	var doc originDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, origin, err)
	}
	if doc.Conversations == nil {
		doc.Conversations = make(map[string]*Conversation)
	}
	return &doc, nil
}

func (s *FileStore) save(origin string, doc *originDocument) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, origin, err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, origin, err)
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, origin, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, origin, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, origin, err)
	}

	if err := os.Rename(tmpName, s.path(origin)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, origin, err)
	}
	return nil
}

// StartConversation creates a new conversation for an origin, makes it
// current, and returns its id.
func (s *FileStore) StartConversation(origin string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(origin)
	if err != nil {
		return "", err
	}

	id := uuid.Must(uuid.NewV7()).String()
	doc.Conversations[id] = &Conversation{ID: id}
	doc.Current = id

	if err := s.save(origin, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *FileStore) CurrentConversationID(_ context.Context, origin string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(origin)
	if err != nil {
		return "", err
	}
	if doc.Current == "" {
		return "", ErrNoConversation
	}
	return doc.Current, nil
}

func (s *FileStore) Conversation(_ context.Context, origin, id string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(origin)
	if err != nil {
		return nil, err
	}
	conv, ok := doc.Conversations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}

	copied := *conv
	return &copied, nil
}

func (s *FileStore) UpdateConversation(_ context.Context, origin, id, history string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(origin)
	if err != nil {
		return err
	}
	conv, ok := doc.Conversations[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}

	conv.History = history
	return s.save(origin, doc)
}
