package chat

import (
	"context"

	"github.com/linnemanlabs/salus/internal/engine"
)

// Store is the persistence interface for conversations. Context reads and
// writes for one conversation are always serialized by the Service, so
// implementations only need to be safe across conversations.
type Store interface {
	// GetContext returns the stored engine context for a conversation.
	// ok is false for a conversation that has no stored context yet.
	GetContext(ctx context.Context, conversationID string) (cc engine.Context, ok bool, err error)

	// PutContext stores the engine context for a conversation, replacing
	// any previous value.
	PutContext(ctx context.Context, conversationID string, cc engine.Context) error

	// AppendMessage adds one message to a conversation's transcript.
	AppendMessage(ctx context.Context, m *Message) error

	// Transcript returns a conversation's messages in turn order.
	// A conversation with no messages returns an empty slice, not an error.
	Transcript(ctx context.Context, conversationID string) ([]Message, error)
}

// Notifier escalates emergency turns to an external channel.
type Notifier interface {
	Notify(ctx context.Context, ev *EmergencyEvent) error
}
