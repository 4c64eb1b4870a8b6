package chatapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/salus/internal/kb"
)

// chatRequest is the POST /api/v1/chat payload.
type chatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

func (a *API) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, `{"error":"message is required"}`, http.StatusBadRequest)
		return
	}

	span := trace.SpanFromContext(r.Context())
	if req.ConversationID != "" {
		span.SetAttributes(attribute.String("salus.conversation.id", req.ConversationID))
	}

	reply, err := a.svc.Send(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to handle chat message", "conversation_id", req.ConversationID)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	span.SetAttributes(
		attribute.String("salus.conversation.id", reply.ConversationID),
		attribute.Bool("salus.reply.emergency", reply.IsEmergency),
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reply)
}

func (a *API) handleTranscript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("salus.conversation.id", id))

	messages, err := a.svc.Transcript(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to load transcript", "conversation_id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if len(messages) == 0 {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"conversation_id": id,
		"messages":        messages,
	})
}

// topicInfo is the public shape of a knowledge base topic: category and
// severity only, never the keyword lists or canned responses.
type topicInfo struct {
	Category string      `json:"category"`
	Severity kb.Severity `json:"severity"`
}

func (a *API) handleTopics(w http.ResponseWriter, r *http.Request) {
	topics := make([]topicInfo, 0, a.kb.Len())
	for _, t := range a.kb.Topics() {
		topics = append(topics, topicInfo{Category: t.Category, Severity: t.Severity})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"topics": topics,
	})
}
