package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/synapse/internal/db"
	"github.com/kailas-cloud/synapse/internal/domain/item"
	"github.com/kailas-cloud/synapse/internal/domain/search/filter"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRanker(t *testing.T) (*NativeRanker, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, Options{}), ms
}

func testScope(t *testing.T, qt item.QueryType) filter.Scope {
	t.Helper()
	s, err := filter.NewScope("u1", qt)
	if err != nil {
		t.Fatalf("scope: %v", err)
	}
	return s
}

func testVector() []float32 {
	return []float32{0.1, 0.2, 0.3}
}
