package item

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/synapse/internal/db"
	"github.com/kailas-cloud/synapse/internal/db/memory"
	domitem "github.com/kailas-cloud/synapse/internal/domain/item"
	"github.com/kailas-cloud/synapse/internal/domain/search/filter"
)

func mustScope(t *testing.T, userID string, qt domitem.QueryType) filter.Scope {
	t.Helper()
	s, err := filter.NewScope(userID, qt)
	if err != nil {
		t.Fatalf("scope: %v", err)
	}
	return s
}

// --- EnsureIndex ---

func TestEnsureIndex_Definition(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		got = def
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "FT.CREATE synapse:item:idx ON JSON PREFIX synapse:item: SCHEMA " +
		"$.user_id AS user_id TAG $.type AS type TAG $.embedding AS embedding VECTOR HNSW"
	if got.String() != want {
		t.Errorf("got %q\nwant %q", got.String(), want)
	}
	if got.Fields[2].VectorDim != 3 || got.Fields[2].VectorDistance != db.DistanceCosine {
		t.Errorf("unexpected vector field: %+v", got.Fields[2])
	}
}

func TestEnsureIndex_ExistsIsOK(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return db.ErrIndexExists }

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestEnsureIndex_Error(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error {
		return &db.Error{Op: db.OpCreateIndex, Err: errors.New("boom")}
	}

	if err := repo.EnsureIndex(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnsureIndex_FlatAlgorithm(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, IndexConfig{Name: "custom:idx", Dimensions: 8, Algorithm: db.VectorFlat})

	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		if def.Name != "custom:idx" || def.Fields[2].VectorAlgo != db.VectorFlat {
			t.Errorf("unexpected definition: %s", def)
		}
		return nil
	}
	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Save ---

func TestSave_KeyAndDocument(t *testing.T) {
	repo, ms := newTestRepo(t)
	it := testItem(t, "a", "u1", domitem.TypeText, []float32{1, 0, 0})

	ms.jsonSetFn = func(_ context.Context, key, path string, data []byte) error {
		if key != "synapse:item:u1:a" || path != "$" {
			t.Errorf("unexpected key/path: %s %s", key, path)
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if doc["user_id"] != "u1" || doc["type"] != "text" || doc["created_at"] != "2025-03-01T12:00:00Z" {
			t.Errorf("unexpected doc: %v", doc)
		}
		if _, ok := doc["embedding"]; !ok {
			t.Error("expected embedding in document")
		}
		return nil
	}

	if err := repo.Save(context.Background(), &it); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSave_OmitsEmptyEmbedding(t *testing.T) {
	repo, ms := newTestRepo(t)
	it := testItem(t, "a", "u1", domitem.TypeText, nil)

	ms.jsonSetFn = func(_ context.Context, _, _ string, data []byte) error {
		if strings.Contains(string(data), `"embedding"`) {
			t.Errorf("embedding should be omitted: %s", data)
		}
		if !strings.Contains(string(data), `"tags":["go"]`) {
			t.Errorf("expected tags: %s", data)
		}
		return nil
	}
	if err := repo.Save(context.Background(), &it); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Find ---

func TestFind_ProjectedReply(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "synapse:item:u1:*" {
			t.Errorf("unexpected pattern: %s", pattern)
		}
		return []string{"synapse:item:u1:a", "synapse:item:u1:gone"}, nil
	}
	ms.jsonGetMultiFn = func(_ context.Context, keys []string, paths ...string) ([][]byte, error) {
		for _, p := range paths {
			if p == "$.content" {
				t.Error("content must not be projected")
			}
		}
		return [][]byte{
			[]byte(`{"$.id":["a"],"$.user_id":["u1"],"$.type":["url"],"$.title":["T"],` +
				`"$.tags":[["x","y"]],"$.embedding":[[1,0,0]],"$.created_at":["2025-03-01T12:00:00Z"],"$.media_url":[]}`),
			nil,
		}, nil
	}

	items, err := repo.Find(context.Background(), mustScope(t, "u1", domitem.QueryAll))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	it := items[0]
	if it.ID() != "a" || it.Type() != domitem.TypeURL || it.Title() != "T" {
		t.Errorf("unexpected item: %+v", it)
	}
	if len(it.Tags()) != 2 || len(it.Embedding()) != 3 || it.MediaURL() != "" {
		t.Errorf("unexpected projected fields: tags=%v emb=%v media=%q", it.Tags(), it.Embedding(), it.MediaURL())
	}
	if it.CreatedAt().IsZero() {
		t.Error("expected created_at to be parsed")
	}
}

func TestFind_AppliesTypeCondition(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.scanFn = func(context.Context, string) ([]string, error) {
		return []string{"k1", "k2"}, nil
	}
	ms.jsonGetMultiFn = func(context.Context, []string, ...string) ([][]byte, error) {
		return [][]byte{
			[]byte(`{"id":"1","user_id":"u1","type":"image"}`),
			[]byte(`{"id":"2","user_id":"u1","type":"text"}`),
		}, nil
	}

	items, err := repo.Find(context.Background(), mustScope(t, "u1", domitem.QueryImage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID() != "1" {
		t.Errorf("expected only the image item, got %v", items)
	}
}

func TestFind_RejectsForeignDocuments(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.scanFn = func(context.Context, string) ([]string, error) { return []string{"k"}, nil }
	ms.jsonGetMultiFn = func(context.Context, []string, ...string) ([][]byte, error) {
		return [][]byte{[]byte(`{"id":"1","user_id":"u2","type":"text"}`)}, nil
	}

	items, err := repo.Find(context.Background(), mustScope(t, "u1", domitem.QueryAll))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
}

func TestFind_EscapesGlob(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != `synapse:item:a\*b\?:*` {
			t.Errorf("unexpected pattern: %s", pattern)
		}
		return nil, nil
	}
	if _, err := repo.Find(context.Background(), mustScope(t, "a*b?", domitem.QueryAll)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFind_Errors(t *testing.T) {
	boom := errors.New("boom")

	repo, ms := newTestRepo(t)
	ms.scanFn = func(context.Context, string) ([]string, error) { return nil, boom }
	if _, err := repo.Find(context.Background(), mustScope(t, "u1", domitem.QueryAll)); !errors.Is(err, boom) {
		t.Errorf("expected scan error, got %v", err)
	}

	repo, ms = newTestRepo(t)
	ms.scanFn = func(context.Context, string) ([]string, error) { return []string{"k"}, nil }
	ms.jsonGetMultiFn = func(context.Context, []string, ...string) ([][]byte, error) { return nil, boom }
	if _, err := repo.Find(context.Background(), mustScope(t, "u1", domitem.QueryAll)); !errors.Is(err, boom) {
		t.Errorf("expected fetch error, got %v", err)
	}

	repo, ms = newTestRepo(t)
	ms.scanFn = func(context.Context, string) ([]string, error) { return []string{"k"}, nil }
	ms.jsonGetMultiFn = func(context.Context, []string, ...string) ([][]byte, error) {
		return [][]byte{[]byte(`not json`)}, nil
	}
	if _, err := repo.Find(context.Background(), mustScope(t, "u1", domitem.QueryAll)); err == nil {
		t.Error("expected decode error")
	}
}

// --- against the in-memory store ---

func TestSaveFindCount_MemoryStore(t *testing.T) {
	ctx := context.Background()
	repo := New(memory.NewStore(), IndexConfig{Dimensions: 3})

	a := testItem(t, "a", "u1", domitem.TypeText, []float32{1, 0, 0})
	b := testItem(t, "b", "u1", domitem.TypeImage, nil)
	c := testItem(t, "c", "u10", domitem.TypeText, []float32{0, 1, 0})
	for _, it := range []*domitem.Item{&a, &b, &c} {
		if err := repo.Save(ctx, it); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	items, err := repo.Find(ctx, mustScope(t, "u1", domitem.QueryAll))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items for u1, got %d", len(items))
	}
	for _, it := range items {
		if it.Content() != "" {
			t.Errorf("content leaked for %s", it.ID())
		}
	}

	n, err := repo.Count(ctx, "u10")
	if err != nil || n != 1 {
		t.Errorf("expected 1 item for u10, got %d %v", n, err)
	}
}
