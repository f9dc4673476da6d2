package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/synapse/internal/domain"
	"github.com/kailas-cloud/synapse/internal/domain/item"
	"github.com/kailas-cloud/synapse/internal/domain/search/filter"
	"github.com/kailas-cloud/synapse/internal/domain/search/result"
)

// Ranker orders a user's items by similarity to a query vector.
// Implementations: repository/search.NativeRanker (store index) and LocalRanker (exact scan).
type Ranker interface {
	Rank(ctx context.Context, vector []float32, scope filter.Scope, limit int) ([]result.Result, error)
}

// ItemFinder performs the filtered scan used by the exact path.
type ItemFinder interface {
	Find(ctx context.Context, scope filter.Scope) ([]item.Item, error)
}

// Classifier infers which item type a query is about. It never fails: uncertainty yields item.QueryAll.
type Classifier interface {
	Classify(ctx context.Context, query string) item.QueryType
}

// Embedder converts text to a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Observer receives search telemetry.
type Observer interface {
	ObserveSearch(path string, d time.Duration, results int)
	ObserveFallback()
	ObserveClassification(queryType string)
}

// Path labels reported to the Observer.
const (
	PathNative  = "native"
	PathLocal   = "local"
	PathSkipped = "skipped"
)

type noopObserver struct{}

func (noopObserver) ObserveSearch(string, time.Duration, int) {}
func (noopObserver) ObserveFallback()                         {}
func (noopObserver) ObserveClassification(string)             {}
