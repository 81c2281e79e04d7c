// Package raster converts PDF documents into ordered sequences of page
// images suitable for multimodal analysis.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"log/slog"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/paperlens/paperlens/internal/fault"
)

// DefaultMaxPages caps how many pages of a single document are rendered.
const DefaultMaxPages = 10

// Render settings. 108 DPI is 1.5x the PDF user-space resolution, a
// balance between legibility of text and figures and payload size; the
// JPEG quality matches.
const (
	renderDPI   = 108
	jpegQuality = 80
)

// Result is the outcome of rasterizing one document. ProcessedPages is
// the number of pages attempted after the cap; individual pages that
// fail to render are skipped, so len(Pages) may be smaller.
type Result struct {
	Pages          [][]byte
	TotalPages     int
	ProcessedPages int
	Truncated      bool
}

// Renderer rasterizes one document into page images.
type Renderer interface {
	Rasterize(ctx context.Context, data []byte, maxPages int) (*Result, error)
}

// MuPDF renders PDFs via the MuPDF library.
type MuPDF struct{}

// NewMuPDF returns the production renderer.
func NewMuPDF() *MuPDF {
	return &MuPDF{}
}

// Rasterize renders up to maxPages pages of the document as JPEG images,
// in strict ascending page order. A page that fails to render is skipped
// and processing continues; only a document that cannot be opened at all
// fails the call.
func (m *MuPDF) Rasterize(ctx context.Context, data []byte, maxPages int) (*Result, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fault.Wrap(fault.KindDecode, "failed to open document", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	process, truncated := capPages(total, maxPages)
	if truncated {
		slog.Info("Truncating document", "total_pages", total, "max_pages", maxPages)
	}

	pages := make([][]byte, 0, process)
	for i := 0; i < process; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := doc.ImageDPI(i, renderDPI)
		if err != nil {
			slog.Warn("Skipping unrenderable page", "page", i+1, "error", err)
			continue
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			slog.Warn("Skipping page that failed to encode", "page", i+1, "error", err)
			continue
		}
		pages = append(pages, buf.Bytes())
	}

	if process > 0 && len(pages) == 0 {
		return nil, fault.New(fault.KindRender, "no page of the document could be rendered")
	}

	return &Result{
		Pages:          pages,
		TotalPages:     total,
		ProcessedPages: process,
		Truncated:      truncated,
	}, nil
}

// capPages limits work to min(total, maxPages) and reports truncation.
func capPages(total, maxPages int) (process int, truncated bool) {
	if maxPages > 0 && total > maxPages {
		return maxPages, true
	}
	return total, false
}

// Merge rasterizes every file concurrently and concatenates the page
// images in file order. Selection order is preserved regardless of which
// file finishes first: results land in an indexed slice, not a
// first-done-wins merge. The first file that fails to decode fails the
// whole batch.
func Merge(ctx context.Context, r Renderer, files [][]byte, maxPages int) ([][]byte, error) {
	results := make([]*Result, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for i, data := range files {
		wg.Add(1)
		go func(idx int, data []byte) {
			defer wg.Done()
			results[idx], errs[idx] = r.Rasterize(ctx, data, maxPages)
		}(i, data)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("file %d: %w", i+1, err)
		}
	}

	var pages [][]byte
	for _, res := range results {
		pages = append(pages, res.Pages...)
	}

	slog.Info("Merged document batch", "files", len(files), "pages", len(pages))
	return pages, nil
}
