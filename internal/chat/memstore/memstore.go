// Package memstore provides an in-memory implementation of chat.Store.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/linnemanlabs/salus/internal/chat"
	"github.com/linnemanlabs/salus/internal/engine"
)

// Store holds conversation state in memory. Suitable for dev/testing;
// everything is lost on restart.
type Store struct {
	mu          sync.RWMutex
	contexts    map[string]engine.Context // conversation ID -> latest context
	transcripts map[string][]chat.Message // conversation ID -> messages in append order
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		contexts:    make(map[string]engine.Context),
		transcripts: make(map[string][]chat.Message),
	}
}

// GetContext retrieves the latest engine context for a conversation.
func (s *Store) GetContext(_ context.Context, conversationID string) (engine.Context, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cc, ok := s.contexts[conversationID]
	if !ok {
		return engine.Context{}, false, nil
	}
	cc.ActiveFollowups = slices.Clone(cc.ActiveFollowups)
	return cc, true, nil
}

// PutContext stores a copy of the engine context for a conversation.
func (s *Store) PutContext(_ context.Context, conversationID string, cc engine.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cc.ActiveFollowups = slices.Clone(cc.ActiveFollowups)
	s.contexts[conversationID] = cc
	return nil
}

// AppendMessage stores a copy of the message at the end of its
// conversation's transcript.
func (s *Store) AppendMessage(_ context.Context, m *chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[m.ConversationID] = append(s.transcripts[m.ConversationID], *m)
	return nil
}

// Transcript returns copies of a conversation's messages in append order.
func (s *Store) Transcript(_ context.Context, conversationID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.transcripts[conversationID]), nil
}
