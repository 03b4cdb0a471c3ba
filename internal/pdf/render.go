package pdf

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"
)

const (
	// DefaultRenderPages caps how many leading pages are rasterized for OCR.
	DefaultRenderPages = 2
	// DefaultRenderDPI balances OCR accuracy against image size.
	DefaultRenderDPI = 200.0
)

// Renderer rasterizes PDF pages to PNG images using MuPDF.
type Renderer struct {
	dpi float64
}

// NewRenderer creates a renderer. A non-positive dpi selects DefaultRenderDPI.
func NewRenderer(dpi float64) *Renderer {
	if dpi <= 0 {
		dpi = DefaultRenderDPI
	}
	return &Renderer{dpi: dpi}
}

// RenderPages renders up to maxPages leading pages of data, in page order.
// Pages are rendered one at a time so only a single raster is held in
// memory while encoding.
func (r *Renderer) RenderPages(ctx context.Context, data []byte, maxPages int) ([][]byte, error) {
	if maxPages <= 0 {
		maxPages = DefaultRenderPages
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for rendering: %w", err)
	}
	defer doc.Close()

	count := min(doc.NumPage(), maxPages)
	images := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return images, err
		}
		png, err := doc.ImagePNG(i, r.dpi)
		if err != nil {
			return images, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}
		images = append(images, png)
	}

	return images, nil
}
