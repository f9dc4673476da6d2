package ingest

import (
	"context"
	"time"

	"github.com/kailas-cloud/synapse/internal/domain"
	"github.com/kailas-cloud/synapse/internal/domain/item"
)

// ItemSaver persists a finished item.
type ItemSaver interface {
	Save(ctx context.Context, it *item.Item) error
}

// Enricher generates item metadata. Implementations never fail; they fall back to fixed defaults.
type Enricher interface {
	Summarize(ctx context.Context, content string) string
	Tags(ctx context.Context, content string) []string
	Categories(ctx context.Context, content string) []string
	Title(ctx context.Context, content string) string
	DescribeImage(ctx context.Context, png []byte) string
}

// Embedder converts the combined item text to a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Fetcher downloads a web page and extracts its title and readable text.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Page is the readable part of a fetched web page.
type Page struct {
	Title string
	Text  string
}

// Observer receives ingestion telemetry.
type Observer interface {
	ObserveIngest(itemType, status string, d time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveIngest(string, string, time.Duration) {}
