package ingest

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/synapse/internal/domain"
	"github.com/kailas-cloud/synapse/internal/domain/item"
)

type fakeSaver struct {
	mu    sync.Mutex
	saved []item.Item
	err   error
}

func (f *fakeSaver) Save(_ context.Context, it *item.Item) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, *it)
	return nil
}

// fakeEnricher returns deterministic values derived from its input.
type fakeEnricher struct {
	mu          sync.Mutex
	summarized  []string
	described   int
	describedIn []byte
}

func (f *fakeEnricher) Summarize(_ context.Context, content string) string {
	f.mu.Lock()
	f.summarized = append(f.summarized, content)
	f.mu.Unlock()
	return "summary of " + content
}

func (f *fakeEnricher) Tags(context.Context, string) []string { return []string{"go", "notes"} }

func (f *fakeEnricher) Categories(context.Context, string) []string { return []string{"Technology"} }

func (f *fakeEnricher) Title(_ context.Context, content string) string { return "title of " + content }

func (f *fakeEnricher) DescribeImage(_ context.Context, png []byte) string {
	f.mu.Lock()
	f.described++
	f.describedIn = png
	f.mu.Unlock()
	return "a red square"
}

type fakeEmbedder struct {
	vector []float32
	err    error
	texts  []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: f.vector}, nil
}

type fakeFetcher struct {
	page Page
	err  error
}

func (f *fakeFetcher) Fetch(context.Context, string) (Page, error) {
	return f.page, f.err
}

type recordingObserver struct {
	itemTypes []string
	statuses  []string
}

func (r *recordingObserver) ObserveIngest(itemType, status string, _ time.Duration) {
	r.itemTypes = append(r.itemTypes, itemType)
	r.statuses = append(r.statuses, status)
}

type fixture struct {
	svc      *Service
	saver    *fakeSaver
	enricher *fakeEnricher
	embedder *fakeEmbedder
	fetcher  *fakeFetcher
	obs      *recordingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		saver:    &fakeSaver{},
		enricher: &fakeEnricher{},
		embedder: &fakeEmbedder{vector: []float32{0.6, 0.8}},
		fetcher:  &fakeFetcher{},
		obs:      &recordingObserver{},
	}
	f.svc = New(f.saver, f.enricher, f.embedder, f.fetcher, f.obs)
	f.svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	f.svc.newID = func() string { return "item-1" }
	return f
}

// pngBytes encodes a solid w x h image.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
