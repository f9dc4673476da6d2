package ingest

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/synapse/internal/domain"
	"github.com/kailas-cloud/synapse/internal/domain/item"
)

func TestAdd_Text(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.Add(context.Background(), "u1", Input{Type: item.TypeText, Text: "vector search notes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Message != SavedMessage || out.ID != "item-1" {
		t.Errorf("unexpected output: %+v", out)
	}
	if out.Summary != "summary of vector search notes" {
		t.Errorf("summary = %q", out.Summary)
	}
	if !reflect.DeepEqual(out.Tags, []string{"go", "notes"}) {
		t.Errorf("tags = %v", out.Tags)
	}

	if len(f.saver.saved) != 1 {
		t.Fatalf("expected 1 saved item, got %d", len(f.saver.saved))
	}
	it := f.saver.saved[0]
	if it.UserID() != "u1" || it.Type() != item.TypeText {
		t.Errorf("unexpected owner/type: %s/%s", it.UserID(), it.Type())
	}
	if it.Content() != "vector search notes" || it.SourcePlatform() != PlatformManual {
		t.Errorf("unexpected content/platform: %q/%q", it.Content(), it.SourcePlatform())
	}
	if it.Title() != "title of vector search notes" {
		t.Errorf("title = %q", it.Title())
	}
	if !it.HasEmbedding() {
		t.Error("expected embedding to be stored")
	}

	if len(f.embedder.texts) != 1 || !strings.HasPrefix(f.embedder.texts[0], "Title: title of vector search notes\n") {
		t.Errorf("unexpected embedding text: %q", f.embedder.texts)
	}
	if !reflect.DeepEqual(f.obs.statuses, []string{"success"}) {
		t.Errorf("observer statuses = %v", f.obs.statuses)
	}
}

func TestAdd_URL(t *testing.T) {
	f := newFixture(t)
	f.fetcher.page = Page{Title: "Attention Is All You Need", Text: "transformers everywhere"}

	_, err := f.svc.Add(context.Background(), "u1", Input{Type: item.TypeURL, URL: " https://medium.com/@x/post "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	it := f.saver.saved[0]
	if it.Title() != "Attention Is All You Need" {
		t.Errorf("title = %q, want the page title", it.Title())
	}
	if it.Content() != "transformers everywhere" {
		t.Errorf("content = %q", it.Content())
	}
	if it.SourcePlatform() != "Medium" {
		t.Errorf("platform = %q", it.SourcePlatform())
	}
	if it.MediaURL() != "https://medium.com/@x/post" {
		t.Errorf("media url = %q", it.MediaURL())
	}
}

func TestAdd_URLFetchFailure(t *testing.T) {
	f := newFixture(t)
	f.fetcher.err = errors.New("connection refused")

	_, err := f.svc.Add(context.Background(), "u1", Input{Type: item.TypeURL, URL: "https://example.com"})
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if len(f.saver.saved) != 0 {
		t.Error("expected nothing saved")
	}
	if !reflect.DeepEqual(f.obs.statuses, []string{"error"}) {
		t.Errorf("observer statuses = %v", f.obs.statuses)
	}
}

func TestAdd_Image(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Add(context.Background(), "u1", Input{Type: item.TypeImage, Image: pngBytes(t, 20, 10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.enricher.described != 1 {
		t.Fatalf("expected one image description, got %d", f.enricher.described)
	}
	it := f.saver.saved[0]
	if it.Summary() != "a red square" {
		t.Errorf("summary = %q, want the caption", it.Summary())
	}
	if it.Content() != "summary of a red square" {
		t.Errorf("content = %q, want the caption summary", it.Content())
	}
	if it.Title() != "title of a red square" || it.SourcePlatform() != PlatformUpload {
		t.Errorf("unexpected title/platform: %q/%q", it.Title(), it.SourcePlatform())
	}
}

func TestAdd_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		in     Input
	}{
		{"no user", "", Input{Type: item.TypeText, Text: "x"}},
		{"unknown type", "u1", Input{Type: "video", Text: "x"}},
		{"blank text", "u1", Input{Type: item.TypeText, Text: "  "}},
		{"missing url", "u1", Input{Type: item.TypeURL}},
		{"missing image", "u1", Input{Type: item.TypeImage}},
		{"not an image", "u1", Input{Type: item.TypeImage, Image: []byte("plain text")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Add(context.Background(), tc.userID, tc.in)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			if len(f.saver.saved) != 0 {
				t.Error("expected nothing saved")
			}
		})
	}
}

func TestAdd_EmbeddingFailureStoresUnembedded(t *testing.T) {
	f := newFixture(t)
	f.embedder.err = domain.ErrEmbeddingProviderError

	if _, err := f.svc.Add(context.Background(), "u1", Input{Type: item.TypeText, Text: "hello"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.saver.saved) != 1 {
		t.Fatalf("expected item to be saved")
	}
	if f.saver.saved[0].HasEmbedding() {
		t.Error("expected item without embedding")
	}
}

func TestAdd_SaveFailure(t *testing.T) {
	f := newFixture(t)
	f.saver.err = errors.New("store down")

	_, err := f.svc.Add(context.Background(), "u1", Input{Type: item.TypeText, Text: "hello"})
	if err == nil || !strings.Contains(err.Error(), "store down") {
		t.Fatalf("expected save error, got %v", err)
	}
}

func TestCombinedText(t *testing.T) {
	got := CombinedText(item.Fields{
		Title:    "T",
		Summary:  "S",
		Content:  "C",
		Tags:     []string{"a", "b"},
		Category: []string{"X", "Y"},
	})
	want := "Title: T\nSummary: S\nContent: C\nTags: a, b\nCategories: X, Y"
	if got != want {
		t.Errorf("CombinedText() = %q, want %q", got, want)
	}
}
