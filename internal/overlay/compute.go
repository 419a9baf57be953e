package overlay

import "github.com/karnell/boxlens/internal/geom"

// Compute projects pipeline items into an overlay of the given size.
// It is the pure core of a render: same items and size, same boxes.
// Items that cannot be projected (unsized layout or overlay) are
// omitted rather than surfaced as errors.
func Compute(items []Item, overlayW, overlayH float64) []Box {
	var boxes []Box
	for _, it := range items {
		sr, ok := geom.Project(it.Rect, overlayW, overlayH)
		if !ok {
			continue
		}
		boxes = append(boxes, Box{
			ID:     it.ID,
			Kind:   it.Kind,
			Type:   it.Type,
			Review: it.Review,
			Rect:   sr,
		})
	}
	return boxes
}
