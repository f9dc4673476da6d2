package synapse

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/synapse/internal/domain"
	"github.com/kailas-cloud/synapse/internal/domain/item"
	openaiTransport "github.com/kailas-cloud/synapse/internal/transport/openai"
)

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Classifier guesses which item type a query is about.
// It returns "text", "url", "image" or "all"; anything else is read as "all".
type Classifier interface {
	Classify(ctx context.Context, query string) string
}

// Enricher generates item metadata. Implementations must not fail:
// on provider errors they return their own fallback values.
type Enricher interface {
	Summarize(ctx context.Context, content string) string
	Tags(ctx context.Context, content string) []string
	Categories(ctx context.Context, content string) []string
	Title(ctx context.Context, content string) string
	DescribeImage(ctx context.Context, png []byte) string
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// classifierAdapter maps the public string answer onto item.QueryType.
type classifierAdapter struct {
	inner Classifier
}

func (a *classifierAdapter) Classify(ctx context.Context, query string) item.QueryType {
	return item.ParseQueryType(a.inner.Classify(ctx, query))
}

// noopEmbedder returns an error on every call: items are stored without
// vectors and searches come back empty.
type noopEmbedder struct{}

func (noopEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"synapse: embedder not configured (use WithOpenAI or WithEmbedder)",
	)
}

type allClassifier struct{}

func (allClassifier) Classify(context.Context, string) item.QueryType { return item.QueryAll }

// defaultEnricher fills every field with the fixed fallback values.
type defaultEnricher struct{}

func (defaultEnricher) Summarize(context.Context, string) string {
	return openaiTransport.DefaultSummary
}
func (defaultEnricher) Tags(context.Context, string) []string { return []string{} }
func (defaultEnricher) Categories(context.Context, string) []string {
	return []string{openaiTransport.DefaultCategory}
}
func (defaultEnricher) Title(context.Context, string) string { return openaiTransport.DefaultTitle }
func (defaultEnricher) DescribeImage(context.Context, []byte) string {
	return openaiTransport.DefaultImageDescription
}
