package raster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// blockingRasterizer parks in RenderPage until its context is canceled
// or release is closed.
type blockingRasterizer struct {
	mu      sync.Mutex
	started chan struct{}
	release chan struct{}
	calls   int
}

func (b *blockingRasterizer) PageCount(ctx context.Context, doc string) (int, error) {
	return 3, nil
}

func (b *blockingRasterizer) RenderPage(ctx context.Context, doc string, page int, zoom float64) (PageInfo, error) {
	b.mu.Lock()
	b.calls++
	first := b.calls == 1
	b.mu.Unlock()
	if first {
		close(b.started)
		select {
		case <-ctx.Done():
			return PageInfo{}, ctx.Err()
		case <-b.release:
		}
	}
	return PageInfo{Page: page, Width: 612 * zoom, Height: 792 * zoom}, nil
}

func TestController_NewRenderCancelsInFlight(t *testing.T) {
	r := &blockingRasterizer{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := NewController(r)

	type result struct {
		info PageInfo
		err  error
	}
	firstDone := make(chan result, 1)
	go func() {
		info, err := c.Render(context.Background(), "doc", 1, 1)
		firstDone <- result{info, err}
	}()

	<-r.started

	// Second render for a different page must cancel the first.
	info, err := c.Render(context.Background(), "doc", 2, 2)
	if err != nil {
		t.Fatalf("second render failed: %v", err)
	}
	if info.Page != 2 || info.Width != 1224 {
		t.Errorf("unexpected page info: %+v", info)
	}

	select {
	case res := <-firstDone:
		if !errors.Is(res.err, ErrCanceled) {
			t.Errorf("first render: expected ErrCanceled, got %v", res.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first render never returned after cancellation")
	}
}

type fixedRasterizer struct{}

func (fixedRasterizer) PageCount(ctx context.Context, doc string) (int, error) {
	return 1, nil
}

func (fixedRasterizer) RenderPage(ctx context.Context, doc string, page int, zoom float64) (PageInfo, error) {
	return PageInfo{Page: page, Width: 612 * zoom, Height: 792 * zoom}, nil
}

func TestController_PassesThroughDimensions(t *testing.T) {
	c := NewController(fixedRasterizer{})
	info, err := c.Render(context.Background(), "doc", 1, 1.5)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if info.Width != 918 || info.Height != 1188 {
		t.Errorf("expected 918x1188 at zoom 1.5, got %+v", info)
	}
}
