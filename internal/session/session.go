// Package session tracks per-operator dashboard view state. The state
// carries a generation counter: async work captures the generation when
// it starts and compares it on completion, so results of superseded
// requests are discarded instead of rendered.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the explicit view-state record for one dashboard session.
type State struct {
	ID  string `json:"id"`
	Doc string `json:"doc"`

	Page      int             `json:"page"`
	Mode      string          `json:"mode"` // "elements" or "chunks"
	Types     []string        `json:"types,omitempty"`
	Review    string          `json:"review,omitempty"`
	Outline   bool            `json:"outline"`
	Expanded  map[string]bool `json:"expanded,omitempty"`
	Selection string          `json:"selection,omitempty"`
	Zoom      float64         `json:"zoom"`
	OverlayW  float64         `json:"overlay_w"`
	OverlayH  float64         `json:"overlay_h"`

	Generation uint64    `json:"generation"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *State) clone() *State {
	out := *s
	if s.Types != nil {
		out.Types = append([]string(nil), s.Types...)
	}
	if s.Expanded != nil {
		out.Expanded = make(map[string]bool, len(s.Expanded))
		for k, v := range s.Expanded {
			out.Expanded[k] = v
		}
	}
	return &out
}

// Registry is a thread-safe in-memory session store with TTL eviction
// and optional persistence.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*State
	ttl      time.Duration
	repo     *Repo
	log      *slog.Logger
}

func NewRegistry(ttl time.Duration, repo *Repo, log *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*State),
		ttl:      ttl,
		repo:     repo,
		log:      log,
	}
}

// Create registers a new session with defaults and returns a copy.
func (r *Registry) Create(doc string) *State {
	s := &State{
		ID:        uuid.NewString(),
		Doc:       doc,
		Page:      1,
		Mode:      "elements",
		Zoom:      1.0,
		UpdatedAt: time.Now(),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	out := s.clone()
	r.mu.Unlock()
	r.persist(out)
	return out
}

// Get returns a copy of the session state, or nil if unknown.
func (r *Registry) Get(id string) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil
	}
	return s.clone()
}

// Update applies fn to the session under the registry lock and bumps
// the generation, invalidating any in-flight render for it. Returns
// the updated copy, or nil if the session is unknown.
func (r *Registry) Update(id string, fn func(*State)) *State {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	fn(s)
	s.Generation++
	s.UpdatedAt = time.Now()
	out := s.clone()
	r.mu.Unlock()
	r.persist(out)
	return out
}

// Generation returns the session's live generation; 0 if unknown.
func (r *Registry) Generation(id string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s.Generation
	}
	return 0
}

// Cleanup evicts sessions idle longer than the TTL.
func (r *Registry) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, s := range r.sessions {
		if now.Sub(s.UpdatedAt) > r.ttl {
			delete(r.sessions, id)
		}
	}
}

// Start runs periodic TTL cleanup until the context is done.
func (r *Registry) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Cleanup()
			}
		}
	}()
}

// Restore loads persisted sessions into the registry at startup.
func (r *Registry) Restore(ctx context.Context) error {
	if r.repo == nil {
		return nil
	}
	states, err := r.repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range states {
		if _, exists := r.sessions[s.ID]; !exists {
			r.sessions[s.ID] = s
		}
	}
	return nil
}

func (r *Registry) persist(s *State) {
	if r.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.repo.Save(ctx, s); err != nil && r.log != nil {
		r.log.Warn("session persist failed", "session_id", s.ID, "error", err)
	}
}
