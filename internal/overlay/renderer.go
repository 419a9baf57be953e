package overlay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/karnell/boxlens/internal/geom"
	"github.com/karnell/boxlens/internal/hierarchy"
	"github.com/karnell/boxlens/internal/raster"
)

// ErrSuperseded means the view state changed while a render was in
// flight and its result was discarded. Callers treat it as a no-op.
var ErrSuperseded = errors.New("render superseded")

// Source supplies element, chunk, and review data for a document.
// *upstream.Client implements it.
type Source interface {
	Boxes(ctx context.Context, doc string, page int, types []string) (map[string]geom.Element, error)
	ChunkList(ctx context.Context, doc string) ([]geom.Chunk, error)
	Reviews(ctx context.Context, doc string) ([]geom.Review, error)
}

// State tracks where the renderer is in its cycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRendered
)

// Request captures everything a render depends on at the moment it is
// requested. Generation is the session generation at request time; it
// is compared against the live value after every suspension point.
type Request struct {
	Doc     string
	Page    int
	Mode    Mode
	Filters Filters

	// Overlay size. When zero, the size is derived from the
	// rasterizer's page dimensions at Zoom.
	OverlayW float64
	OverlayH float64
	Zoom     float64

	Generation uint64
}

// Renderer owns the clear-and-rebuild contract: each render replaces
// the surface contents wholesale, at most one render is in flight, and
// a newer render cancels the older one before drawing.
type Renderer struct {
	src     Source
	store   *geom.Store
	surface Surface
	raster  *raster.Controller
	compat  hierarchy.CompatTable
	log     *slog.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

func NewRenderer(src Source, surface Surface, rast *raster.Controller, log *slog.Logger) *Renderer {
	return &Renderer{
		src:     src,
		store:   geom.NewStore(),
		surface: surface,
		raster:  rast,
		compat:  hierarchy.DefaultTable(),
		log:     log,
	}
}

// State returns the renderer's current lifecycle state.
func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Render executes one full render cycle and returns the boxes it drew.
// current reports the live session generation; nil means the request
// can never go stale. On any await the view state may have moved on,
// so the generation is re-validated before the result is applied.
func (r *Renderer) Render(ctx context.Context, req Request, current func() uint64) ([]Box, error) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	renderCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.state = StateLoading
	r.mu.Unlock()
	defer cancel()

	boxes, err := r.render(renderCtx, req, current)
	if err != nil {
		if errors.Is(err, ErrSuperseded) || errors.Is(err, context.Canceled) {
			if r.log != nil {
				r.log.Debug("render superseded", "doc", req.Doc, "page", req.Page, "mode", req.Mode)
			}
			return nil, ErrSuperseded
		}
		// Degrade to an empty, consistent overlay.
		r.mu.Lock()
		r.surface.Clear()
		r.state = StateIdle
		r.mu.Unlock()
		if r.log != nil {
			r.log.Error("render failed", "doc", req.Doc, "page", req.Page, "error", err)
		}
		return nil, err
	}
	return boxes, nil
}

func (r *Renderer) render(ctx context.Context, req Request, current func() uint64) ([]Box, error) {
	stale := func() bool {
		return current != nil && current() != req.Generation
	}

	r.store.SetDocument(req.Doc)

	var items []Item
	switch req.Mode {
	case ModeChunks:
		chunks, err := r.src.ChunkList(ctx, req.Doc)
		if err != nil {
			return nil, fmt.Errorf("fetch chunks: %w", err)
		}
		reviews, err := r.src.Reviews(ctx, req.Doc)
		if err != nil {
			return nil, fmt.Errorf("fetch reviews: %w", err)
		}
		if stale() {
			return nil, ErrSuperseded
		}
		r.store.SetChunks(chunks)
		r.store.SetReviews(reviews)
		items = ChunkItems(r.store.Chunks(), req.Page, r.store.Review, req.Filters)

	default: // elements
		elems, err := r.src.Boxes(ctx, req.Doc, req.Page, req.Filters.Types)
		if err != nil {
			return nil, fmt.Errorf("fetch boxes: %w", err)
		}
		reviews, err := r.src.Reviews(ctx, req.Doc)
		if err != nil {
			return nil, fmt.Errorf("fetch reviews: %w", err)
		}
		if stale() {
			return nil, ErrSuperseded
		}
		r.store.SetPageElements(req.Page, elems)
		r.store.SetReviews(reviews)

		list := make([]geom.Element, 0, len(elems))
		for _, e := range r.store.PageElements(req.Page) {
			list = append(list, e)
		}
		forest := hierarchy.Build(list, r.compat)
		items = ElementItems(list, forest, r.store.Review, req.Filters)
	}

	overlayW, overlayH := req.OverlayW, req.OverlayH
	if (overlayW <= 0 || overlayH <= 0) && r.raster != nil {
		info, err := r.raster.Render(ctx, req.Doc, req.Page, req.Zoom)
		if err != nil {
			if errors.Is(err, raster.ErrCanceled) {
				return nil, ErrSuperseded
			}
			return nil, fmt.Errorf("rasterize page %d: %w", req.Page, err)
		}
		overlayW, overlayH = info.Width, info.Height
	}
	if stale() {
		return nil, ErrSuperseded
	}

	boxes := Compute(items, overlayW, overlayH)

	// Last full render wins: a newer render cancels this context
	// before it draws, so re-check right before touching the surface.
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctx.Err() != nil || stale() {
		return nil, ErrSuperseded
	}
	r.surface.Clear()
	for _, b := range boxes {
		r.surface.Draw(b)
	}
	r.state = StateRendered
	return boxes, nil
}
