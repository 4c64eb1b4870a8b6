package chat

import (
	"time"

	"github.com/linnemanlabs/salus/internal/kb"
)

// Role identifies who produced a transcript message.
type Role string

const (
	// RoleUser is a message typed by the user.
	RoleUser Role = "user"

	// RoleBot is the engine's reply.
	RoleBot Role = "bot"
)

// Message is one transcript entry. User and bot messages from the same
// turn share a Turn number.
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	Role           Role        `json:"role"`
	Text           string      `json:"text"`
	Category       string      `json:"category,omitempty"`
	Severity       kb.Severity `json:"severity,omitempty"`
	IsEmergency    bool        `json:"is_emergency,omitempty"`
	Turn           int         `json:"turn"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Reply is the outcome of sending one message to a conversation.
type Reply struct {
	ConversationID string      `json:"conversation_id"`
	Reply          string      `json:"reply"`
	Category       string      `json:"category,omitempty"`
	Severity       kb.Severity `json:"severity"`
	IsEmergency    bool        `json:"is_emergency"`
	Turn           int         `json:"turn"`
}

// EmergencyEvent describes a turn that tripped an emergency rule. It
// carries no patient text; only routing metadata leaves the service.
type EmergencyEvent struct {
	ConversationID string
	Turn           int
	At             time.Time
}
