package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/synapse/internal/domain/item"
	"github.com/kailas-cloud/synapse/internal/domain/search/filter"
	"github.com/kailas-cloud/synapse/internal/domain/search/result"
)

// LocalRanker is the exact path: it scans every item in scope and ranks by cosine similarity.
// Cost is O(N*D) for one user's N items of dimension D.
type LocalRanker struct {
	items ItemFinder
}

// NewLocalRanker creates the exact-scan ranker.
func NewLocalRanker(items ItemFinder) *LocalRanker {
	return &LocalRanker{items: items}
}

type scored struct {
	it    *item.Item
	score float64
}

// Rank returns up to limit results by descending cosine similarity.
// A zero query vector, or any zero candidate vector, yields an empty result.
func (r *LocalRanker) Rank(
	ctx context.Context, vector []float32, scope filter.Scope, limit int,
) ([]result.Result, error) {
	items, err := r.items.Find(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}

	candidates := make([]*item.Item, 0, len(items))
	for i := range items {
		if items[i].HasEmbedding() {
			candidates = append(candidates, &items[i])
		}
	}
	if len(candidates) == 0 {
		return []result.Result{}, nil
	}

	qNorm := norm(vector)
	if qNorm == 0 {
		return []result.Result{}, nil
	}

	norms := make([]float64, len(candidates))
	for i, c := range candidates {
		norms[i] = norm(c.Embedding())
		if norms[i] == 0 {
			// one degenerate vector invalidates the whole batch
			return []result.Result{}, nil
		}
	}

	ranked := make([]scored, len(candidates))
	for i, c := range candidates {
		s, err := cosine(vector, c.Embedding(), qNorm, norms[i])
		if err != nil {
			return nil, fmt.Errorf("score item %s: %w", c.ID(), err)
		}
		ranked[i] = scored{it: c, score: s}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	n := min(limit, len(ranked))
	out := make([]result.Result, 0, n)
	for _, s := range ranked[:n] {
		out = append(out, toResult(s.it, s.score))
	}
	return out, nil
}

func toResult(it *item.Item, score float64) result.Result {
	return result.New(it.ID(), result.Fields{
		Title:          it.Title(),
		Summary:        it.Summary(),
		Tags:           it.Tags(),
		Category:       it.Category(),
		Type:           string(it.Type()),
		SourcePlatform: it.SourcePlatform(),
		MediaURL:       it.MediaURL(),
		CreatedAt:      it.CreatedAt(),
	}, score)
}
