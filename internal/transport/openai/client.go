// Package openai talks to an OpenAI-compatible API for embeddings, query
// classification and content enrichment.
package openai

import (
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Default models.
const (
	DefaultEmbeddingModel = "text-embedding-3-large"
	DefaultChatModel      = "gpt-4o-mini"
)

// Config holds the provider settings shared by the embedder, classifier and enricher.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string // embedding model
	Dimensions int
	ChatModel  string
	Timeout    time.Duration // per chat call; 0 means no extra deadline
	User       string
	Provider   string
	Logger     *zap.Logger
}

func newClient(cfg *Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

func chatModel(cfg *Config) string {
	if cfg.ChatModel == "" {
		return DefaultChatModel
	}
	return cfg.ChatModel
}

func logger(cfg *Config) *zap.Logger {
	if cfg.Logger == nil {
		return zap.NewNop()
	}
	return cfg.Logger
}
