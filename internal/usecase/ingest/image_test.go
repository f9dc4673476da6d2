package ingest

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/kailas-cloud/synapse/internal/domain"
)

func TestThumbnail_FitsLargeImage(t *testing.T) {
	out, err := Thumbnail(pngBytes(t, 1600, 400))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 200 {
		t.Errorf("thumbnail = %dx%d, want 800x200", b.Dx(), b.Dy())
	}
}

func TestThumbnail_KeepsSmallImage(t *testing.T) {
	out, err := Thumbnail(pngBytes(t, 30, 40))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 40 {
		t.Errorf("thumbnail = %dx%d, want 30x40", b.Dx(), b.Dy())
	}
}

func TestThumbnail_RejectsGarbage(t *testing.T) {
	if _, err := Thumbnail([]byte("definitely not an image")); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
