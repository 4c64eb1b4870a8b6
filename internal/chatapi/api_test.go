package chatapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/salus/internal/chat"
	"github.com/linnemanlabs/salus/internal/chat/memstore"
	"github.com/linnemanlabs/salus/internal/engine"
	"github.com/linnemanlabs/salus/internal/kb"
)

const testSource = `
topics:
  - category: fever
    keywords: ["fever", "high temperature"]
    severity: moderate
    followup: [hydration]
    response: "Fever advice."
  - category: hydration
    keywords: ["water", "fluids"]
    severity: info
    response: "Hydration advice."
emergencies:
  - keywords: ["cant breathe"]
    message: "Call emergency services now."
`

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	k, err := kb.Parse([]byte(testSource))
	if err != nil {
		t.Fatalf("kb.Parse: %v", err)
	}
	svc := chat.NewService(memstore.New(), engine.New(k, engine.Hooks{}), log.Nop(), nil, nil)
	api := New(nil, svc, k)
	r := chi.NewRouter()
	api.RegisterRoutes(r)
	return r
}

func TestNew_NilLogger(t *testing.T) {
	t.Parallel()

	k, err := kb.Parse([]byte(testSource))
	if err != nil {
		t.Fatalf("kb.Parse: %v", err)
	}
	svc := chat.NewService(memstore.New(), engine.New(k, engine.Hooks{}), log.Nop(), nil, nil)

	api := New(nil, svc, k)
	if api == nil {
		t.Fatal("New(nil, svc, kb) returned nil API")
	}
	if api.logger == nil {
		t.Fatal("New(nil, svc, kb) left logger nil; expected Nop logger")
	}
}

func TestNew_NilService_Panics(t *testing.T) {
	t.Parallel()

	k, err := kb.Parse([]byte(testSource))
	if err != nil {
		t.Fatalf("kb.Parse: %v", err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("New(nil, nil, kb) did not panic; expected panic for nil service")
		}
	}()
	New(nil, nil, k)
}

func TestHandleChat(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
	}{
		{"POST valid message", http.MethodPost, `{"message":"I have a fever"}`, http.StatusOK},
		{"POST blank message", http.MethodPost, `{"message":"   "}`, http.StatusBadRequest},
		{"POST missing message", http.MethodPost, `{}`, http.StatusBadRequest},
		{"POST invalid JSON", http.MethodPost, `{bad`, http.StatusBadRequest},
		{"GET not allowed", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"PUT not allowed", http.MethodPut, "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/api/v1/chat", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestHandleChat_ReplyShape(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"I have a fever"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var reply chat.Reply
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if reply.ConversationID == "" {
		t.Error("expected assigned conversation_id")
	}
	if reply.Category != "fever" {
		t.Errorf("category = %q, want fever", reply.Category)
	}
	if reply.Severity != kb.SeverityModerate {
		t.Errorf("severity = %q, want moderate", reply.Severity)
	}
	if reply.IsEmergency {
		t.Error("is_emergency = true, want false")
	}
	if reply.Turn != 1 {
		t.Errorf("turn = %d, want 1", reply.Turn)
	}
}

func TestHandleChat_EmergencyFlagged(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"I can't breathe"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var reply chat.Reply
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if !reply.IsEmergency {
		t.Error("is_emergency = false, want true")
	}
	if reply.Severity != kb.SeverityEmergency {
		t.Errorf("severity = %q, want emergency", reply.Severity)
	}
}

func TestHandleChat_ContinuesConversation(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"message":"I have a fever"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var first chat.Reply
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatalf("unmarshal first reply: %v", err)
	}

	body := `{"conversation_id":"` + first.ConversationID + `","message":"should I drink water"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var second chat.Reply
	if err := json.Unmarshal(w.Body.Bytes(), &second); err != nil {
		t.Fatalf("unmarshal second reply: %v", err)
	}
	if second.ConversationID != first.ConversationID {
		t.Errorf("conversation_id = %q, want %q", second.ConversationID, first.ConversationID)
	}
	if second.Turn != 2 {
		t.Errorf("turn = %d, want 2", second.Turn)
	}
}

func TestHandleTranscript(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"conversation_id":"c-1","message":"I have a fever"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("chat status = %d, want 200", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/conversations/c-1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		ConversationID string         `json:"conversation_id"`
		Messages       []chat.Message `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal transcript: %v", err)
	}
	if resp.ConversationID != "c-1" {
		t.Errorf("conversation_id = %q, want c-1", resp.ConversationID)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("messages = %d, want 2 (user + bot)", len(resp.Messages))
	}
	if resp.Messages[0].Role != chat.RoleUser || resp.Messages[1].Role != chat.RoleBot {
		t.Errorf("roles = %q/%q, want user/bot", resp.Messages[0].Role, resp.Messages[1].Role)
	}
}

func TestHandleTranscript_NotFound(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/ghost", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleTopics(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/topics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Topics []topicInfo `json:"topics"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal topics: %v", err)
	}
	if len(resp.Topics) != 2 {
		t.Fatalf("topics = %d, want 2", len(resp.Topics))
	}
	if resp.Topics[0].Category != "fever" {
		t.Errorf("first topic = %q, want fever (declaration order)", resp.Topics[0].Category)
	}
}
