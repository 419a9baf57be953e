package overlay

import (
	"sync"

	"github.com/karnell/boxlens/internal/geom"
)

// Box is a projected overlay rectangle with the metadata the client
// needs to style and address it.
type Box struct {
	ID     string          `json:"id"`
	Kind   string          `json:"kind"`
	Type   string          `json:"type"`
	Review geom.Rating     `json:"review,omitempty"`
	Rect   geom.ScreenRect `json:"rect"`
}

// Surface is the sink a render draws into. The renderer clears it and
// re-adds every surviving box; there is no incremental diffing.
type Surface interface {
	Clear()
	Draw(Box)
}

// Snapshot is an in-memory Surface holding the last full render. The
// API layer serves its contents as JSON; a browser client paints them.
type Snapshot struct {
	mu    sync.Mutex
	boxes []Box
}

func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

func (s *Snapshot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boxes = nil
}

func (s *Snapshot) Draw(b Box) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boxes = append(s.boxes, b)
}

// Boxes returns a copy of the current box set.
func (s *Snapshot) Boxes() []Box {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Box, len(s.boxes))
	copy(out, s.boxes)
	return out
}
