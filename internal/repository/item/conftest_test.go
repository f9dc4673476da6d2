package item

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/synapse/internal/db"
	domitem "github.com/kailas-cloud/synapse/internal/domain/item"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn      func(ctx context.Context, key, path string, data []byte) error
	jsonGetMultiFn func(ctx context.Context, keys []string, paths ...string) ([][]byte, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGetMulti(ctx context.Context, keys []string, paths ...string) ([][]byte, error) {
	if m.jsonGetMultiFn != nil {
		return m.jsonGetMultiFn(ctx, keys, paths...)
	}
	return make([][]byte, len(keys)), nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, IndexConfig{Dimensions: 3, M: 16, EFConstruct: 200}), ms
}

func testItem(t *testing.T, id, userID string, typ domitem.Type, vec []float32) domitem.Item {
	t.Helper()
	it, err := domitem.New(id, userID, typ, domitem.Fields{
		Title:          "Title " + id,
		Summary:        "Summary " + id,
		Content:        "secret content",
		Tags:           []string{"go"},
		Category:       []string{"Programming"},
		SourcePlatform: "Manual Entry",
		Embedding:      vec,
	}, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	return it
}
