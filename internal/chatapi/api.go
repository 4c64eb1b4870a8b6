// Package chatapi exposes the chat service over HTTP.
package chatapi

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/salus/internal/chat"
	"github.com/linnemanlabs/salus/internal/kb"
)

// ChatService defines the business operations chatapi needs.
type ChatService interface {
	Send(ctx context.Context, conversationID, text string) (*chat.Reply, error)
	Transcript(ctx context.Context, conversationID string) ([]chat.Message, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    ChatService
	kb     *kb.KB
}

// New creates a new API handler.
func New(logger log.Logger, svc ChatService, k *kb.KB) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("chat service is required"))
	}
	if k == nil {
		panic(xerrors.New("knowledge base is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
		kb:     k,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", a.handleChat)
		r.Get("/conversations/{id}", a.handleTranscript)
		r.Get("/topics", a.handleTopics)
	})
}
