package ingest

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/kailas-cloud/synapse/internal/domain"
)

// Thumbnail bounds for uploaded images.
const (
	ThumbnailWidth  = 800
	ThumbnailHeight = 800
)

// Thumbnail decodes an uploaded image, fits it inside 800x800 keeping the
// aspect ratio and re-encodes it as PNG. Smaller images are not enlarged.
func Thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %w", domain.ErrInvalidRequest, err)
	}

	img = imaging.Fit(img, ThumbnailWidth, ThumbnailHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
