// Package overlay turns one page's elements or chunks into the ordered
// set of screen rectangles the dashboard draws, applying the type,
// review-status, and outline-expansion filters in a fixed order.
package overlay

import (
	"sort"

	"github.com/karnell/boxlens/internal/geom"
	"github.com/karnell/boxlens/internal/hierarchy"
)

// Mode selects what the overlay draws.
type Mode string

const (
	ModeElements Mode = "elements"
	ModeChunks   Mode = "chunks"
)

// ReviewFilter restricts items by review status.
type ReviewFilter string

const (
	ReviewAll     ReviewFilter = ""
	ReviewGood    ReviewFilter = "good"
	ReviewBad     ReviewFilter = "bad"
	ReviewUnrated ReviewFilter = "unrated"
)

// Filters is the active filter state for one render.
type Filters struct {
	Types    []string        // element/chunk types to keep; empty keeps all
	Review   ReviewFilter    // review-status stage
	Outline  bool            // outline mode active (elements only)
	Expanded map[string]bool // session expand/collapse state
}

// Item is one drawable candidate surviving the pipeline, still in
// layout space.
type Item struct {
	ID     string
	Kind   string // "element" or "chunk"
	Type   string
	Rect   geom.Rect
	Review geom.Rating
}

// ReviewLookup resolves the rating for (kind, item id).
type ReviewLookup func(kind, id string) geom.Rating

// ElementItems runs the filter pipeline over one page's elements. The
// result order is deterministic: reading order, id as tiebreak.
func ElementItems(elements []geom.Element, forest hierarchy.Forest, reviews ReviewLookup, f Filters) []Item {
	ordered := make([]geom.Element, len(elements))
	copy(ordered, elements)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.ID < b.ID
	})

	types := typeSet(f.Types)
	var allowed map[string]bool
	restrict := false
	if f.Outline {
		allowed = hierarchy.ExpandedVisible(forest, f.Expanded)
		restrict = allowed != nil
	}

	var items []Item
	for _, e := range ordered {
		if !e.Visible() {
			continue
		}
		if types != nil && !types[e.Type] {
			continue
		}
		rating := reviews("element", e.ID)
		if !matchReview(f.Review, rating) {
			continue
		}
		if restrict && !allowed[e.ID] {
			continue
		}
		items = append(items, Item{
			ID:     e.ID,
			Kind:   "element",
			Type:   e.Type,
			Rect:   e.Rect(),
			Review: rating,
		})
	}
	return items
}

// ChunkItems runs the filter pipeline over the document's chunks for
// one page. Chunks resolve to at most one rect each via the multi-page
// fallback policy; unresolvable chunks are omitted, not errors. The
// outline stage does not apply in chunks mode.
func ChunkItems(chunks []geom.Chunk, page int, reviews ReviewLookup, f Filters) []Item {
	types := typeSet(f.Types)

	var items []Item
	for _, c := range chunks {
		if !onPage(c, page) {
			continue
		}
		if types != nil && !types[c.Type] {
			continue
		}
		rating := reviews("chunk", c.ElementID)
		if !matchReview(f.Review, rating) {
			continue
		}
		box := geom.ResolveBox(c, page)
		if box == nil || box.W <= 0 || box.H <= 0 {
			continue
		}
		items = append(items, Item{
			ID:     c.ElementID,
			Kind:   "chunk",
			Type:   c.Type,
			Rect:   *box,
			Review: rating,
		})
	}
	return items
}

func onPage(c geom.Chunk, page int) bool {
	for _, p := range geom.ChunkPages(c) {
		if p == page {
			return true
		}
	}
	return false
}

func typeSet(types []string) map[string]bool {
	if len(types) == 0 {
		return nil
	}
	s := make(map[string]bool, len(types))
	for _, t := range types {
		s[t] = true
	}
	return s
}

func matchReview(f ReviewFilter, r geom.Rating) bool {
	switch f {
	case ReviewGood:
		return r == geom.RatingGood
	case ReviewBad:
		return r == geom.RatingBad
	case ReviewUnrated:
		return r == geom.RatingNone
	default:
		return true
	}
}
