package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap"
)

type chatRequest struct {
	Model          string `json:"model"`
	MaxTokens      int    `json:"max_tokens"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []json.RawMessage `json:"messages"`
}

// chatStub serves /chat/completions with a fixed reply and records the requests.
type chatStub struct {
	mu       sync.Mutex
	requests []chatRequest
	reply    string
	status   int
}

func newChatStub(t *testing.T, reply string, status int) (*chatStub, *Config) {
	t.Helper()
	stub := &chatStub{reply: reply, status: status}
	server := httptest.NewServer(http.HandlerFunc(stub.serve(t)))
	t.Cleanup(server.Close)
	return stub, &Config{APIKey: "test-key", BaseURL: server.URL, Logger: zap.NewNop()}
}

func (s *chatStub) serve(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if s.status != 0 && s.status != http.StatusOK {
			w.WriteHeader(s.status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "upstream down", "type": "server_error"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": s.reply},
			}},
		})
	}
}

func (s *chatStub) last(t *testing.T) chatRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatal("expected at least one chat request")
	}
	return s.requests[len(s.requests)-1]
}
