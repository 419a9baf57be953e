package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/karnell/boxlens/internal/geom"
	"github.com/karnell/boxlens/internal/hierarchy"
	"github.com/karnell/boxlens/internal/overlay"
	"github.com/karnell/boxlens/internal/preview"
)

// handleOverlay computes the overlay box set for one page. With a
// session id the request starts from that session's view state (and
// its generation, so a concurrent state change supersedes the render);
// query parameters override individual fields.
func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	doc := chi.URLParam(r, "doc")
	q := r.URL.Query()

	req := overlay.Request{
		Doc:  doc,
		Page: 1,
		Mode: overlay.ModeElements,
		Zoom: s.cfg.DefaultZoom,
	}
	if req.Zoom <= 0 {
		req.Zoom = 1.0
	}
	var current func() uint64

	if sid := q.Get("session"); sid != "" {
		st := s.sessions.Get(sid)
		if st == nil {
			jsonError(w, "unknown session", http.StatusNotFound)
			return
		}
		req.Page = st.Page
		req.Mode = overlay.Mode(st.Mode)
		req.Zoom = st.Zoom
		req.OverlayW = st.OverlayW
		req.OverlayH = st.OverlayH
		req.Filters = overlay.Filters{
			Types:    st.Types,
			Review:   overlay.ReviewFilter(st.Review),
			Outline:  st.Outline,
			Expanded: st.Expanded,
		}
		req.Generation = st.Generation
		current = func() uint64 { return s.sessions.Generation(sid) }
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, "invalid page", http.StatusBadRequest)
			return
		}
		req.Page = n
	}
	if v := q.Get("mode"); v != "" {
		req.Mode = overlay.Mode(v)
	}
	if v := q.Get("types"); v != "" {
		req.Filters.Types = strings.Split(v, ",")
	}
	if v := q.Get("review"); v != "" {
		req.Filters.Review = overlay.ReviewFilter(v)
	}
	if v := q.Get("outline"); v != "" {
		req.Filters.Outline = v == "true"
	}
	if v := q.Get("zoom"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			req.Zoom = f
		}
	}
	if v := q.Get("w"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.OverlayW = f
		}
	}
	if v := q.Get("h"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.OverlayH = f
		}
	}

	boxes, err := s.renderer.Render(r.Context(), req, current)
	if err != nil {
		if errors.Is(err, overlay.ErrSuperseded) {
			jsonError(w, "superseded", http.StatusConflict)
			return
		}
		jsonError(w, "render failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	if boxes == nil {
		boxes = []overlay.Box{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc":   doc,
		"page":  req.Page,
		"mode":  req.Mode,
		"count": len(boxes),
		"boxes": boxes,
	})
}

// handleHierarchy returns the inferred containment forest for a page.
func (s *Server) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	doc := chi.URLParam(r, "doc")
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		jsonError(w, "page query parameter is required", http.StatusBadRequest)
		return
	}
	var types []string
	if v := r.URL.Query().Get("types"); v != "" {
		types = strings.Split(v, ",")
	}

	elems, err := s.backend.Boxes(r.Context(), doc, page, types)
	if err != nil {
		jsonError(w, "fetch boxes: "+err.Error(), http.StatusBadGateway)
		return
	}

	list := make([]geom.Element, 0, len(elems))
	for _, e := range elems {
		list = append(list, e)
	}
	forest := hierarchy.Build(list, nil)
	if forest.Roots == nil {
		forest.Roots = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc":      doc,
		"page":     page,
		"roots":    forest.Roots,
		"children": forest.Children,
	})
}

// handlePages reports page count and rendered dimensions for a doc.
func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	doc := chi.URLParam(r, "doc")
	if s.raster == nil {
		jsonError(w, "no rasterizer configured", http.StatusNotImplemented)
		return
	}
	count, err := s.raster.PageCount(r.Context(), doc)
	if err != nil {
		jsonError(w, "page count: "+err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"doc": doc, "pages": count})
}

// handleChunkPages reports how many chunks touch each page. Counts are
// derived from the same page set the box resolver uses, so they match
// what later actually renders.
func (s *Server) handleChunkPages(w http.ResponseWriter, r *http.Request) {
	doc := chi.URLParam(r, "doc")

	res, err := s.backend.Chunks(r.Context(), doc)
	if err != nil {
		jsonError(w, "fetch chunks: "+err.Error(), http.StatusBadGateway)
		return
	}

	counts := make(map[int]int)
	for _, c := range res.Chunks {
		for _, p := range geom.ChunkPages(c) {
			counts[p]++
		}
	}

	type pageCount struct {
		Page  int `json:"page"`
		Count int `json:"count"`
	}
	out := make([]pageCount, 0, len(counts))
	for p, n := range counts {
		out = append(out, pageCount{Page: p, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Page < out[j].Page })

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc":   doc,
		"total": res.Summary.Count,
		"pages": out,
	})
}

// handleChunkPreview returns drawer content for one chunk: rendered
// HTML for markdown chunks, extracted text for HTML table chunks.
func (s *Server) handleChunkPreview(w http.ResponseWriter, r *http.Request) {
	doc := chi.URLParam(r, "doc")
	id := r.URL.Query().Get("id")
	if id == "" {
		jsonError(w, "id query parameter is required", http.StatusBadRequest)
		return
	}

	res, err := s.backend.Chunks(r.Context(), doc)
	if err != nil {
		jsonError(w, "fetch chunks: "+err.Error(), http.StatusBadGateway)
		return
	}

	for _, c := range res.Chunks {
		if c.ElementID != id {
			continue
		}

		var htmlOut, text string
		if preview.LooksLikeHTML(c.Text) {
			text, err = preview.HTMLText(c.Text)
		} else {
			text = c.Text
			htmlOut, err = preview.MarkdownHTML(c.Text)
		}
		if err != nil {
			jsonError(w, "render preview: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":       c.ElementID,
			"type":     c.Type,
			"char_len": c.CharLen,
			"pages":    geom.ChunkPages(c),
			"excerpt":  preview.Excerpt(text, 280),
			"html":     htmlOut,
		})
		return
	}

	jsonError(w, "chunk not found", http.StatusNotFound)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
