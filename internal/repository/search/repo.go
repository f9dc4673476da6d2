// Package search is the native ranking path: a filtered KNN query on the store's vector index.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/synapse/internal/db"
	"github.com/kailas-cloud/synapse/internal/domain"
	"github.com/kailas-cloud/synapse/internal/domain/search/filter"
	"github.com/kailas-cloud/synapse/internal/domain/search/result"
)

// Defaults for the candidate pool: max(limit*DefaultCandidateFactor, DefaultMinCandidates).
const (
	DefaultCandidateFactor = 20
	DefaultMinCandidates   = 100
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Options tunes the native query.
type Options struct {
	IndexName string
	// Algorithm must match the index; EF_RUNTIME is only sent to HNSW indexes. Empty means HNSW.
	Algorithm       db.VectorAlgorithm
	CandidateFactor int
	MinCandidates   int
}

// NativeRanker implements usecase/search.Ranker on top of FT.SEARCH KNN.
type NativeRanker struct {
	store store
	opts  Options
}

// New creates a native ranker.
func New(s store, opts Options) *NativeRanker {
	if opts.IndexName == "" {
		opts.IndexName = domain.DefaultIndexName
	}
	if opts.CandidateFactor <= 0 {
		opts.CandidateFactor = DefaultCandidateFactor
	}
	if opts.MinCandidates <= 0 {
		opts.MinCandidates = DefaultMinCandidates
	}
	if opts.Algorithm == "" {
		opts.Algorithm = db.VectorHNSW
	}
	return &NativeRanker{store: s, opts: opts}
}

// returnFields are the display attributes read back from the index. No embedding, content or owner.
var returnFields = []db.ReturnField{
	{Path: "$.id", Alias: "id"},
	{Path: "$.title", Alias: "title"},
	{Path: "$.summary", Alias: "summary"},
	{Path: "$.tags", Alias: "tags"},
	{Path: "$.category", Alias: "category"},
	{Path: "$.type", Alias: "type"},
	{Path: "$.source_platform", Alias: "source_platform"},
	{Path: "$.media_url", Alias: "media_url"},
	{Path: "$.created_at", Alias: "created_at"},
}

// Rank returns up to limit results ordered by the index's similarity score.
func (r *NativeRanker) Rank(
	ctx context.Context, vector []float32, scope filter.Scope, limit int,
) ([]result.Result, error) {
	conds := scope.Conditions()
	filters := make([]db.Equality, 0, len(conds))
	for _, c := range conds {
		filters = append(filters, db.Equality{Field: c.Key(), Value: c.Value()})
	}

	q := &db.KNNQuery{
		IndexName:    r.opts.IndexName,
		VectorField:  "embedding",
		Vector:       vector,
		Filters:      filters,
		Candidates:   r.candidates(limit),
		K:            limit,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.opts.IndexName, err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return []result.Result{}, nil
	}

	results := make([]result.Result, 0, min(len(sr.Entries), limit))
	for _, entry := range sr.Entries {
		if len(results) == limit {
			break
		}
		results = append(results, parseEntry(entry))
	}
	return results, nil
}

// candidates is 0 for FLAT indexes, which reject EF_RUNTIME.
func (r *NativeRanker) candidates(limit int) int {
	if r.opts.Algorithm != db.VectorHNSW {
		return 0
	}
	return max(limit*r.opts.CandidateFactor, r.opts.MinCandidates)
}

func parseEntry(entry db.SearchEntry) result.Result {
	f := entry.Fields
	id := f["id"]
	if id == "" {
		id = entry.Key[strings.LastIndex(entry.Key, ":")+1:]
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, f["created_at"])
	return result.New(id, result.Fields{
		Title:          f["title"],
		Summary:        f["summary"],
		Tags:           parseList(f["tags"]),
		Category:       parseList(f["category"]),
		Type:           f["type"],
		SourcePlatform: f["source_platform"],
		MediaURL:       f["media_url"],
		CreatedAt:      createdAt,
	}, entry.Score)
}

// parseList decodes an array attribute. The index returns arrays as JSON text;
// anything else is treated as a single value.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err == nil {
		return out
	}
	return []string{s}
}
