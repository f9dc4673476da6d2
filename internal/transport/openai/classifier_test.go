package openai

import (
	"context"
	"net/http"
	"testing"

	"github.com/kailas-cloud/synapse/internal/domain/item"
)

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  item.QueryType
	}{
		{"image", "image", item.QueryImage},
		{"padded upper", "  URL\n", item.QueryURL},
		{"text", "text", item.QueryText},
		{"all", "all", item.QueryAll},
		{"chatty", "It is an image", item.QueryAll},
		{"empty", "", item.QueryAll},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub, cfg := newChatStub(t, tc.reply, http.StatusOK)
			c := NewClassifier(cfg)

			if got := c.Classify(context.Background(), "photo of a cat"); got != tc.want {
				t.Errorf("Classify() = %q, want %q", got, tc.want)
			}

			req := stub.last(t)
			if req.Model != DefaultChatModel {
				t.Errorf("model = %q, want %q", req.Model, DefaultChatModel)
			}
			if req.MaxTokens != 5 {
				t.Errorf("max_tokens = %d, want 5", req.MaxTokens)
			}
		})
	}
}

func TestClassifier_FailsOpen(t *testing.T) {
	_, cfg := newChatStub(t, "", http.StatusInternalServerError)
	c := NewClassifier(cfg)

	if got := c.Classify(context.Background(), "anything"); got != item.QueryAll {
		t.Errorf("Classify() = %q, want all", got)
	}
}

func TestClassifier_CustomModel(t *testing.T) {
	stub, cfg := newChatStub(t, "text", http.StatusOK)
	cfg.ChatModel = "local-mini"
	NewClassifier(cfg).Classify(context.Background(), "notes")

	if got := stub.last(t).Model; got != "local-mini" {
		t.Errorf("model = %q, want local-mini", got)
	}
}
