// Package embedding holds embedder decorators shared by search and ingestion.
package embedding

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/synapse/internal/domain"
	"github.com/kailas-cloud/synapse/internal/logger"
)

// DefaultMaxInputRunes keeps a request under the provider's 8191-token input limit.
const DefaultMaxInputRunes = 24000

// InstrumentedEmbedder clips oversized input and logs every request with its latency and usage.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner         domain.Embedder
	provider      string
	model         string
	maxInputRunes int
}

// NewInstrumentedEmbedder wraps an embedder. maxInputRunes <= 0 uses DefaultMaxInputRunes.
func NewInstrumentedEmbedder(inner domain.Embedder, provider, model string, maxInputRunes int) *InstrumentedEmbedder {
	if maxInputRunes <= 0 {
		maxInputRunes = DefaultMaxInputRunes
	}
	return &InstrumentedEmbedder{
		inner:         inner,
		provider:      provider,
		model:         model,
		maxInputRunes: maxInputRunes,
	}
}

// Embed clips the text, delegates to the inner embedder and logs the outcome.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	log := logger.FromContext(ctx)

	if n := utf8.RuneCountInString(text); n > p.maxInputRunes {
		log.Debug("Embedding input clipped",
			zap.Int("runes", n),
			zap.Int("max_runes", p.maxInputRunes),
		)
		text = clip(text, p.maxInputRunes)
	}

	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	duration := time.Since(start)

	if err != nil {
		log.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	log.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

func clip(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
