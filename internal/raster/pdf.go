package raster

import (
	"context"
	"fmt"
	"path/filepath"

	pdflib "github.com/ledongthuc/pdf"
)

// Default page size (US Letter in PDF points) when a page carries no
// media box anywhere on its parent chain.
const (
	defaultPageW = 612.0
	defaultPageH = 792.0
)

// PDFRasterizer reads page dimensions from the source PDFs on disk.
// One point maps to one layout pixel at zoom 1.
type PDFRasterizer struct {
	dir string
}

func NewPDFRasterizer(dir string) *PDFRasterizer {
	return &PDFRasterizer{dir: dir}
}

func (p *PDFRasterizer) path(doc string) string {
	return filepath.Join(p.dir, filepath.Base(doc)+".pdf")
}

func (p *PDFRasterizer) PageCount(ctx context.Context, doc string) (int, error) {
	f, reader, err := pdflib.Open(p.path(doc))
	if err != nil {
		return 0, fmt.Errorf("open pdf %s: %w", doc, err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}

func (p *PDFRasterizer) RenderPage(ctx context.Context, doc string, page int, zoom float64) (PageInfo, error) {
	if err := ctx.Err(); err != nil {
		return PageInfo{}, err
	}
	if zoom <= 0 {
		zoom = 1
	}

	f, reader, err := pdflib.Open(p.path(doc))
	if err != nil {
		return PageInfo{}, fmt.Errorf("open pdf %s: %w", doc, err)
	}
	defer f.Close()

	if page < 1 || page > reader.NumPage() {
		return PageInfo{}, fmt.Errorf("pdf %s has no page %d", doc, page)
	}

	pg := reader.Page(page)
	w, h := defaultPageW, defaultPageH
	if !pg.V.IsNull() {
		// MediaBox may be inherited from an ancestor Pages node.
		for v := pg.V; !v.IsNull(); v = v.Key("Parent") {
			mb := v.Key("MediaBox")
			if mb.IsNull() || mb.Len() != 4 {
				continue
			}
			w = mb.Index(2).Float64() - mb.Index(0).Float64()
			h = mb.Index(3).Float64() - mb.Index(1).Float64()
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return PageInfo{}, err
	}
	return PageInfo{Page: page, Width: w * zoom, Height: h * zoom}, nil
}
