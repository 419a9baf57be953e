// Package geom holds the data model shared by the overlay subsystems:
// elements and chunks as the extraction backend reports them, rectangles
// in layout space, and their projection onto the rendered page.
package geom

// Element is the smallest extracted unit on a page (paragraph, table
// cell, word, ...). X/Y/W/H are in the coordinate space of the page
// image at the size it had during extraction (LayoutW x LayoutH).
type Element struct {
	ID      string  `json:"id"`
	OrigID  string  `json:"orig_id,omitempty"`
	Type    string  `json:"type"`
	Page    int     `json:"page"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	W       float64 `json:"w"`
	H       float64 `json:"h"`
	LayoutW float64 `json:"layout_w"`
	LayoutH float64 `json:"layout_h"`
}

// Rect returns the element's bounding box as a Rect.
func (e Element) Rect() Rect {
	return Rect{
		X: e.X, Y: e.Y, W: e.W, H: e.H,
		Page:    e.Page,
		LayoutW: e.LayoutW, LayoutH: e.LayoutH,
	}
}

// Area returns the bounding-box area in layout units.
func (e Element) Area() float64 {
	return e.W * e.H
}

// Visible reports whether the element has renderable geometry.
// Zero-area markers are valid data but are never drawn.
func (e Element) Visible() bool {
	return e.W > 0 && e.H > 0
}

// Rect is an axis-aligned box. It always carries the layout dimensions
// it was measured against so projection is self-contained.
type Rect struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	W       float64 `json:"w"`
	H       float64 `json:"h"`
	Page    int     `json:"page"`
	LayoutW float64 `json:"layout_w"`
	LayoutH float64 `json:"layout_h"`
}

// ScreenRect is a Rect projected into the current overlay size.
type ScreenRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Chunk is a merged group of one or more elements treated as a
// retrieval/annotation unit, possibly spanning pages.
//
// A chunk's footprint is ambiguous by construction: SingleBox
// (segment_bbox in the data) is authoritative only when the chunk has a
// single constituent element; otherwise the per-page footprint comes
// from PageBoxes. ResolveBox applies the fallback policy.
type Chunk struct {
	ElementID string    `json:"element_id"`
	Type      string    `json:"type"`
	CharLen   int       `json:"char_len"`
	Text      string    `json:"text"`
	SingleBox *Rect     `json:"segment_bbox,omitempty"`
	PageBoxes []Rect    `json:"page_boxes,omitempty"`
	OrigBoxes []Element `json:"orig_boxes"`
}

// Rating is an operator's verdict on an element or chunk.
type Rating string

const (
	RatingGood Rating = "good"
	RatingBad  Rating = "bad"
	RatingNone Rating = "" // not yet reviewed
)

// Review is an operator annotation, owned by the review backend and
// read here only to drive the review-status filter.
type Review struct {
	Kind   string `json:"kind"` // "element" or "chunk"
	ItemID string `json:"item_id"`
	Rating Rating `json:"rating"`
	Note   string `json:"note,omitempty"`
}

// ReviewKey identifies a review by (kind, item id).
type ReviewKey struct {
	Kind   string
	ItemID string
}

// IndexReviews builds a lookup table from a review list.
func IndexReviews(items []Review) map[ReviewKey]Review {
	idx := make(map[ReviewKey]Review, len(items))
	for _, r := range items {
		idx[ReviewKey{Kind: r.Kind, ItemID: r.ItemID}] = r
	}
	return idx
}
