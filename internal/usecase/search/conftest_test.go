package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/synapse/internal/domain"
	"github.com/kailas-cloud/synapse/internal/domain/item"
	"github.com/kailas-cloud/synapse/internal/domain/search/filter"
	"github.com/kailas-cloud/synapse/internal/domain/search/result"
)

// fakeRanker records its calls and returns canned results.
type fakeRanker struct {
	rankFn func(ctx context.Context, vector []float32, scope filter.Scope, limit int) ([]result.Result, error)
	calls  int
	scopes []filter.Scope
}

func (f *fakeRanker) Rank(
	ctx context.Context, vector []float32, scope filter.Scope, limit int,
) ([]result.Result, error) {
	f.calls++
	f.scopes = append(f.scopes, scope)
	if f.rankFn != nil {
		return f.rankFn(ctx, vector, scope, limit)
	}
	return nil, nil
}

// fakeFinder returns items filtered by scope, like the real repository.
type fakeFinder struct {
	items []item.Item
	err   error
}

func (f *fakeFinder) Find(_ context.Context, scope filter.Scope) ([]item.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []item.Item
	for _, it := range f.items {
		if scope.Matches(map[string]string{"user_id": it.UserID(), "type": string(it.Type())}) {
			out = append(out, it)
		}
	}
	return out, nil
}

type fakeClassifier struct {
	queryType item.QueryType
	calls     int
}

func (f *fakeClassifier) Classify(context.Context, string) item.QueryType {
	f.calls++
	return f.queryType
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: f.vector}, nil
}

type recordingObserver struct {
	mu        sync.Mutex
	paths     []string
	fallbacks int
	classes   []string
}

func (o *recordingObserver) ObserveSearch(path string, _ time.Duration, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paths = append(o.paths, path)
}

func (o *recordingObserver) ObserveFallback() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fallbacks++
}

func (o *recordingObserver) ObserveClassification(qt string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.classes = append(o.classes, qt)
}

func testItem(t *testing.T, id, userID string, typ item.Type, vec []float32) item.Item {
	t.Helper()
	it, err := item.New(id, userID, typ, item.Fields{
		Title:     "Title " + id,
		Summary:   "Summary " + id,
		Content:   "content " + id,
		Embedding: vec,
	}, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	return it
}

func testScope(t *testing.T, userID string, qt item.QueryType) filter.Scope {
	t.Helper()
	s, err := filter.NewScope(userID, qt)
	if err != nil {
		t.Fatalf("scope: %v", err)
	}
	return s
}

func ids(results []result.Result) []string {
	out := make([]string, len(results))
	for i := range results {
		out[i] = results[i].ID()
	}
	return out
}

// scenarioItems is the three-item store from the ranking scenario: A=[1,0], B=[0,1], C=[0.9,0.1].
func scenarioItems(t *testing.T) []item.Item {
	t.Helper()
	return []item.Item{
		testItem(t, "A", "u1", item.TypeText, []float32{1, 0}),
		testItem(t, "B", "u1", item.TypeText, []float32{0, 1}),
		testItem(t, "C", "u1", item.TypeText, []float32{0.9, 0.1}),
	}
}
