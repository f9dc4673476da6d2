package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/synapse/internal/domain/item"
	applogger "github.com/kailas-cloud/synapse/internal/logger"
)

const classifyPrompt = `You are a smart query classifier. Categorize this user query into one of these:
- text
- image
- url
If uncertain or it mixes multiple types, return "all".

Query: %q
Just return the type name only.`

// Classifier infers which item type a search query targets with one short chat completion.
type Classifier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewClassifier creates a query classifier.
func NewClassifier(cfg *Config) *Classifier {
	return &Classifier{
		client:  newClient(cfg),
		model:   chatModel(cfg),
		timeout: cfg.Timeout,
	}
}

// Classify returns the inferred type, or item.QueryAll on any failure or unexpected answer.
func (c *Classifier) Classify(ctx context.Context, query string) item.QueryType {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: 5,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(classifyPrompt, query)},
		},
	})
	if err != nil {
		applogger.FromContext(ctx).Warn("Query classification failed, searching all types", zap.Error(err))
		return item.QueryAll
	}
	if len(resp.Choices) == 0 {
		return item.QueryAll
	}
	return item.ParseQueryType(resp.Choices[0].Message.Content)
}
