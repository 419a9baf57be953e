package geom

import "sort"

// ResolveBox selects the single rectangle representing a chunk on a
// page, or nil when the chunk has no renderable footprint there.
//
// Policy, in order:
//  1. A chunk with at most one constituent element returns SingleBox:
//     it is exact for atomic chunks (typically table segments).
//  2. A PageBoxes entry for the requested page.
//  3. SingleBox as a best-effort fallback. For a multi-element chunk
//     spanning pages this may visually misrepresent the footprint, but
//     an approximate box beats no box.
//  4. nil — the caller must skip the chunk on this page.
func ResolveBox(c Chunk, page int) *Rect {
	if len(c.OrigBoxes) <= 1 && c.SingleBox != nil {
		r := *c.SingleBox
		return &r
	}
	for _, b := range c.PageBoxes {
		if b.Page == page {
			r := b
			return &r
		}
	}
	if c.SingleBox != nil {
		r := *c.SingleBox
		return &r
	}
	return nil
}

// ChunkPages returns every page the chunk is known to touch, ascending
// and without duplicates. Page-count summaries built from this must
// agree with which chunks ResolveBox can later place on each page.
func ChunkPages(c Chunk) []int {
	if len(c.PageBoxes) > 0 {
		seen := make(map[int]bool, len(c.PageBoxes))
		var pages []int
		for _, b := range c.PageBoxes {
			if !seen[b.Page] {
				seen[b.Page] = true
				pages = append(pages, b.Page)
			}
		}
		sort.Ints(pages)
		return pages
	}
	if c.SingleBox != nil {
		return []int{c.SingleBox.Page}
	}
	return nil
}
