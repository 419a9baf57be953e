// Package raster fronts the external page-rendering collaborator. The
// browser does the actual pixel work; this side supplies authoritative
// per-page dimensions and enforces the single-active-render contract.
package raster

import (
	"context"
	"errors"
	"sync"
)

// ErrCanceled marks a render task superseded by a newer one. It is a
// no-op for callers, not an error condition.
var ErrCanceled = errors.New("raster: render canceled")

// PageInfo reports the pixel size of a page rendered at some zoom.
type PageInfo struct {
	Page   int     `json:"page"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rasterizer renders a page and reports its dimensions.
type Rasterizer interface {
	PageCount(ctx context.Context, doc string) (int, error)
	RenderPage(ctx context.Context, doc string, page int, zoom float64) (PageInfo, error)
}

// Controller serializes page renders: starting a new render for a
// different page or zoom cancels the in-flight one first, so two
// renders never draw into the same canvas out of order.
type Controller struct {
	r Rasterizer

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewController(r Rasterizer) *Controller {
	return &Controller{r: r}
}

// Render cancels any in-flight task and runs a new one.
func (c *Controller) Render(ctx context.Context, doc string, page int, zoom float64) (PageInfo, error) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	taskCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	info, err := c.r.RenderPage(taskCtx, doc, page, zoom)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return PageInfo{}, ErrCanceled
		}
		return PageInfo{}, err
	}
	return info, nil
}

// PageCount passes through to the underlying rasterizer.
func (c *Controller) PageCount(ctx context.Context, doc string) (int, error) {
	return c.r.PageCount(ctx, doc)
}
