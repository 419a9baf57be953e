package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/karnell/boxlens/internal/config"
	"github.com/karnell/boxlens/internal/geom"
	"github.com/karnell/boxlens/internal/session"
	"github.com/karnell/boxlens/internal/upstream"
)

type fakeBackend struct {
	elements map[string]geom.Element
	chunks   []geom.Chunk
	reviews  []geom.Review
}

func (f *fakeBackend) Boxes(ctx context.Context, doc string, page int, types []string) (map[string]geom.Element, error) {
	return f.elements, nil
}

func (f *fakeBackend) ChunkList(ctx context.Context, doc string) ([]geom.Chunk, error) {
	return f.chunks, nil
}

func (f *fakeBackend) Chunks(ctx context.Context, doc string) (*upstream.ChunksResult, error) {
	return &upstream.ChunksResult{
		Summary: upstream.ChunkSummary{Count: len(f.chunks)},
		Chunks:  f.chunks,
	}, nil
}

func (f *fakeBackend) Elements(ctx context.Context, doc string, ids []string) (map[string]geom.Element, error) {
	return f.elements, nil
}

func (f *fakeBackend) Reviews(ctx context.Context, doc string) ([]geom.Review, error) {
	return f.reviews, nil
}

func testServer(backend *fakeBackend) (*Server, *session.Registry) {
	log := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	sessions := session.NewRegistry(time.Hour, nil, log)
	srv := NewServer(backend, sessions, nil, log, config.Config{})
	return srv, sessions
}

func testBackend() *fakeBackend {
	single := geom.Rect{X: 0, Y: 0, W: 100, H: 40, Page: 1, LayoutW: 800, LayoutH: 1000}
	p2 := geom.Rect{X: 0, Y: 50, W: 90, H: 30, Page: 2, LayoutW: 800, LayoutH: 1000}
	return &fakeBackend{
		elements: map[string]geom.Element{
			"table": {ID: "table", Type: "Table", Page: 1, X: 0, Y: 0, W: 300, H: 200, LayoutW: 800, LayoutH: 1000},
			"cell":  {ID: "cell", Type: "TableCell", Page: 1, X: 10, Y: 10, W: 100, H: 50, LayoutW: 800, LayoutH: 1000},
		},
		chunks: []geom.Chunk{
			{
				ElementID: "c1", Type: "Table", CharLen: 9, Text: "| a | b |",
				SingleBox: &single,
				OrigBoxes: []geom.Element{{ID: "e1", Page: 1}},
			},
			{
				ElementID: "c2", Type: "Text", CharLen: 5, Text: "hello",
				PageBoxes: []geom.Rect{p2},
				OrigBoxes: []geom.Element{{ID: "e2", Page: 2}, {ID: "e3", Page: 2}},
			},
		},
	}
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, out
}

func TestHandleHealth(t *testing.T) {
	srv, _ := testServer(testBackend())
	rec, out := doJSON(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || out["status"] != "ok" {
		t.Errorf("health: code=%d body=%v", rec.Code, out)
	}
}

func TestHandleOverlay_Elements(t *testing.T) {
	srv, _ := testServer(testBackend())
	rec, out := doJSON(t, srv, http.MethodGet, "/api/overlay/doc1?page=1&mode=elements&w=800&h=1000", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%v", rec.Code, out)
	}
	if out["count"].(float64) != 2 {
		t.Errorf("expected 2 boxes, got %v", out["count"])
	}
	boxes := out["boxes"].([]any)
	first := boxes[0].(map[string]any)
	if first["kind"] != "element" {
		t.Errorf("expected element kind, got %v", first)
	}
}

func TestHandleOverlay_ChunksModeAndTypeFilter(t *testing.T) {
	srv, _ := testServer(testBackend())
	rec, out := doJSON(t, srv, http.MethodGet, "/api/overlay/doc1?page=1&mode=chunks&types=Table&w=800&h=1000", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%v", rec.Code, out)
	}
	boxes := out["boxes"].([]any)
	if len(boxes) != 1 {
		t.Fatalf("expected 1 chunk box, got %v", boxes)
	}
	if boxes[0].(map[string]any)["id"] != "c1" {
		t.Errorf("expected c1, got %v", boxes[0])
	}
}

func TestHandleOverlay_SessionState(t *testing.T) {
	srv, sessions := testServer(testBackend())
	st := sessions.Create("doc1")
	sessions.Update(st.ID, func(s *session.State) {
		s.Mode = "chunks"
		s.Page = 2
		s.OverlayW = 800
		s.OverlayH = 1000
	})

	rec, out := doJSON(t, srv, http.MethodGet, "/api/overlay/doc1?session="+st.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%v", rec.Code, out)
	}
	boxes := out["boxes"].([]any)
	if len(boxes) != 1 || boxes[0].(map[string]any)["id"] != "c2" {
		t.Errorf("expected page-2 chunk from session state, got %v", boxes)
	}
}

func TestHandleOverlay_UnknownSession(t *testing.T) {
	srv, _ := testServer(testBackend())
	rec, _ := doJSON(t, srv, http.MethodGet, "/api/overlay/doc1?session=ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleHierarchy(t *testing.T) {
	srv, _ := testServer(testBackend())
	rec, out := doJSON(t, srv, http.MethodGet, "/api/hierarchy/doc1?page=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%v", rec.Code, out)
	}
	roots := out["roots"].([]any)
	if len(roots) != 1 || roots[0] != "table" {
		t.Errorf("expected roots [table], got %v", roots)
	}
	children := out["children"].(map[string]any)
	kids := children["table"].([]any)
	if len(kids) != 1 || kids[0] != "cell" {
		t.Errorf("expected table->cell, got %v", children)
	}
}

func TestHandleHierarchy_RequiresPage(t *testing.T) {
	srv, _ := testServer(testBackend())
	rec, _ := doJSON(t, srv, http.MethodGet, "/api/hierarchy/doc1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleChunkPages(t *testing.T) {
	srv, _ := testServer(testBackend())
	rec, out := doJSON(t, srv, http.MethodGet, "/api/chunks/doc1/pages", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%v", rec.Code, out)
	}
	pages := out["pages"].([]any)
	if len(pages) != 2 {
		t.Fatalf("expected counts for 2 pages, got %v", pages)
	}
	p1 := pages[0].(map[string]any)
	if p1["page"].(float64) != 1 || p1["count"].(float64) != 1 {
		t.Errorf("page 1: got %v", p1)
	}
}

func TestHandleChunkPreview(t *testing.T) {
	srv, _ := testServer(testBackend())
	rec, out := doJSON(t, srv, http.MethodGet, "/api/chunks/doc1/preview?id=c2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d body=%v", rec.Code, out)
	}
	if out["id"] != "c2" || out["excerpt"] != "hello" {
		t.Errorf("unexpected preview: %v", out)
	}

	rec, _ = doJSON(t, srv, http.MethodGet, "/api/chunks/doc1/preview?id=ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown chunk, got %d", rec.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv, _ := testServer(testBackend())

	rec, out := doJSON(t, srv, http.MethodPost, "/api/session", map[string]any{"doc": "doc1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: code=%d body=%v", rec.Code, out)
	}
	id := out["id"].(string)
	if out["generation"].(float64) != 0 {
		t.Errorf("expected generation 0, got %v", out["generation"])
	}

	rec, out = doJSON(t, srv, http.MethodPut, "/api/session/"+id, map[string]any{
		"page":    3,
		"outline": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: code=%d body=%v", rec.Code, out)
	}
	if out["page"].(float64) != 3 || out["outline"] != true {
		t.Errorf("update not applied: %v", out)
	}
	if out["generation"].(float64) != 1 {
		t.Errorf("expected generation bump to 1, got %v", out["generation"])
	}

	rec, out = doJSON(t, srv, http.MethodGet, "/api/session/"+id, nil)
	if rec.Code != http.StatusOK || out["page"].(float64) != 3 {
		t.Errorf("get: code=%d body=%v", rec.Code, out)
	}
}

func TestSessionValidation(t *testing.T) {
	srv, sessions := testServer(testBackend())
	st := sessions.Create("doc1")

	rec, _ := doJSON(t, srv, http.MethodPut, "/api/session/"+st.ID, map[string]any{"page": 0})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("page 0: expected 400, got %d", rec.Code)
	}
	rec, _ = doJSON(t, srv, http.MethodPut, "/api/session/"+st.ID, map[string]any{"mode": "3d"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad mode: expected 400, got %d", rec.Code)
	}
	rec, _ = doJSON(t, srv, http.MethodPut, "/api/session/ghost", map[string]any{"page": 2})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session: expected 404, got %d", rec.Code)
	}
}
