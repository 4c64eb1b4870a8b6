package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/salus/internal/engine"
)

// Service is the business boundary for chat operations. It serializes
// calls per conversation (the engine does not lock), persists transcripts
// and context, and dispatches emergency notifications.
type Service struct {
	store    Store
	engine   *engine.Engine
	logger   log.Logger
	notifier Notifier
	metrics  *Metrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex // conversation ID -> per-conversation lock
}

// NewService creates a new chat service. notifier and metrics may be nil.
func NewService(store Store, eng *engine.Engine, logger log.Logger, metrics *Metrics, notifier Notifier) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:    store,
		engine:   eng,
		logger:   logger,
		notifier: notifier,
		metrics:  metrics,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Send resolves one user message within a conversation. An empty
// conversationID starts a new conversation; the assigned ID is returned
// in the Reply. Calls for the same conversation are serialized.
func (s *Service) Send(ctx context.Context, conversationID, text string) (*Reply, error) {
	fresh := strings.TrimSpace(conversationID) == ""
	if fresh {
		conversationID = ulid.Make().String()
	}

	unlock := s.lockConversation(conversationID)
	defer unlock()

	cc, _, err := s.store.GetContext(ctx, conversationID)
	if err != nil {
		s.count("error")
		return nil, err
	}

	res, next := s.engine.Resolve(ctx, text, cc)

	now := time.Now()
	userMsg := &Message{
		ID:             ulid.Make().String(),
		ConversationID: conversationID,
		Role:           RoleUser,
		Text:           text,
		Turn:           next.TurnCount,
		CreatedAt:      now,
	}
	botMsg := &Message{
		ID:             ulid.Make().String(),
		ConversationID: conversationID,
		Role:           RoleBot,
		Text:           res.Reply,
		Category:       res.Category,
		Severity:       res.Severity,
		IsEmergency:    res.IsEmergency,
		Turn:           next.TurnCount,
		CreatedAt:      now,
	}

	if err := s.store.AppendMessage(ctx, userMsg); err != nil {
		s.count("error")
		return nil, err
	}
	if err := s.store.AppendMessage(ctx, botMsg); err != nil {
		s.count("error")
		return nil, err
	}
	if err := s.store.PutContext(ctx, conversationID, next); err != nil {
		s.count("error")
		return nil, err
	}

	s.logger.Info(ctx, "turn resolved",
		"conversation_id", conversationID,
		"turn", next.TurnCount,
		"outcome", string(res.Outcome),
		"category", res.Category,
		"severity", string(res.Severity),
		"new_conversation", fresh,
	)
	s.count(string(res.Outcome))

	if res.IsEmergency && s.notifier != nil {
		// escalation must not block or die with the request
		go s.escalate(context.WithoutCancel(ctx), &EmergencyEvent{
			ConversationID: conversationID,
			Turn:           next.TurnCount,
			At:             now,
		})
	}

	return &Reply{
		ConversationID: conversationID,
		Reply:          res.Reply,
		Category:       res.Category,
		Severity:       res.Severity,
		IsEmergency:    res.IsEmergency,
		Turn:           next.TurnCount,
	}, nil
}

// Transcript returns a conversation's messages in turn order.
func (s *Service) Transcript(ctx context.Context, conversationID string) ([]Message, error) {
	return s.store.Transcript(ctx, conversationID)
}

func (s *Service) escalate(ctx context.Context, ev *EmergencyEvent) {
	err := s.notifier.Notify(ctx, ev)
	if err != nil {
		s.logger.Error(ctx, err, "emergency notification failed", "conversation_id", ev.ConversationID)
	}
	if s.metrics != nil {
		s.metrics.observeNotify(err == nil)
	}
}

// lockConversation acquires the per-conversation lock, creating it on
// first use. Locks are never reclaimed; the map grows with the number of
// distinct conversations seen, which matches the caller-owned lifetime of
// contexts themselves.
func (s *Service) lockConversation(id string) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Service) count(result string) {
	if s.metrics != nil {
		s.metrics.MessagesTotal.WithLabelValues(result).Inc()
	}
}
