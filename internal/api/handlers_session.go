package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/karnell/boxlens/internal/session"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Doc string `json:"doc"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.Doc == "" {
		jsonError(w, "doc is required", http.StatusBadRequest)
		return
	}

	st := s.sessions.Create(body.Doc)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(st)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if st == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}

// sessionUpdate carries partial view-state changes. Pointer fields
// distinguish "absent" from zero values.
type sessionUpdate struct {
	Doc       *string         `json:"doc"`
	Page      *int            `json:"page"`
	Mode      *string         `json:"mode"`
	Types     *[]string       `json:"types"`
	Review    *string         `json:"review"`
	Outline   *bool           `json:"outline"`
	Expanded  map[string]bool `json:"expanded"`
	Selection *string         `json:"selection"`
	Zoom      *float64        `json:"zoom"`
	OverlayW  *float64        `json:"overlay_w"`
	OverlayH  *float64        `json:"overlay_h"`
}

// handleUpdateSession applies a partial update. Every accepted update
// bumps the generation, so overlay renders in flight for the old state
// are discarded when they complete.
func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var upd sessionUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if upd.Page != nil && *upd.Page < 1 {
		jsonError(w, "page must be >= 1", http.StatusBadRequest)
		return
	}
	if upd.Mode != nil && *upd.Mode != "elements" && *upd.Mode != "chunks" {
		jsonError(w, "mode must be elements or chunks", http.StatusBadRequest)
		return
	}
	if upd.Zoom != nil && *upd.Zoom <= 0 {
		jsonError(w, "zoom must be positive", http.StatusBadRequest)
		return
	}

	st := s.sessions.Update(chi.URLParam(r, "sessionID"), func(st *session.State) {
		if upd.Doc != nil {
			st.Doc = *upd.Doc
		}
		if upd.Page != nil {
			st.Page = *upd.Page
		}
		if upd.Mode != nil {
			st.Mode = *upd.Mode
		}
		if upd.Types != nil {
			st.Types = *upd.Types
		}
		if upd.Review != nil {
			st.Review = *upd.Review
		}
		if upd.Outline != nil {
			st.Outline = *upd.Outline
		}
		if upd.Expanded != nil {
			st.Expanded = upd.Expanded
		}
		if upd.Selection != nil {
			st.Selection = *upd.Selection
		}
		if upd.Zoom != nil {
			st.Zoom = *upd.Zoom
		}
		if upd.OverlayW != nil {
			st.OverlayW = *upd.OverlayW
		}
		if upd.OverlayH != nil {
			st.OverlayH = *upd.OverlayH
		}
	})
	if st == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}
