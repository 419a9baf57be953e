// Package hierarchy infers a containment forest among the elements of
// one page. Containment is not present in the source data; it is
// derived purely from bounding-box geometry.
package hierarchy

import (
	"sort"

	"github.com/karnell/boxlens/internal/geom"
)

// Margin is the tolerance, in layout units, applied when testing
// whether a child rectangle fits inside a candidate parent.
const Margin = 2.0

// Forest is the derived parent/child structure for one page. It is
// rebuilt from scratch whenever the element set changes, never mutated
// in place.
type Forest struct {
	Roots    []string            `json:"roots"`
	Children map[string][]string `json:"children"`
}

// Contains reports whether id appears anywhere in the forest.
func (f Forest) Contains(id string) bool {
	if _, ok := f.Children[id]; ok {
		return true
	}
	for _, r := range f.Roots {
		if r == id {
			return true
		}
	}
	for _, kids := range f.Children {
		for _, k := range kids {
			if k == id {
				return true
			}
		}
	}
	return false
}

// Descendants returns every id reachable below the given node.
func (f Forest) Descendants(id string) []string {
	var out []string
	var walk func(string)
	walk = func(n string) {
		for _, c := range f.Children[n] {
			out = append(out, c)
			walk(c)
		}
	}
	walk(id)
	return out
}

// Build infers the containment forest for one page's elements. A nil
// table means DefaultTable.
//
// Elements are processed in ascending area order so that the smallest
// eligible container claims its children before a larger, coarser one
// (which may also enclose them geometrically) gets the chance. Each
// element is claimed at most once, so the result is a forest: no id has
// two parents and no path forms a cycle.
func Build(elements []geom.Element, table CompatTable) Forest {
	if table == nil {
		table = DefaultTable()
	}

	order := make([]geom.Element, len(elements))
	copy(order, elements)
	sort.Slice(order, func(i, j int) bool {
		ai, aj := order[i].Area(), order[j].Area()
		if ai != aj {
			return ai < aj
		}
		return order[i].ID < order[j].ID
	})

	children := make(map[string][]string)
	parentOf := make(map[string]string)

	for _, e := range order {
		allowed := table[e.Type]
		if allowed == nil || !e.Visible() {
			continue
		}
		for _, o := range order {
			if o.ID == e.ID || o.Page != e.Page {
				continue
			}
			if _, claimed := parentOf[o.ID]; claimed {
				continue
			}
			if !allowed[o.Type] || !o.Visible() {
				continue
			}
			// Claiming an ancestor would close a cycle; possible when
			// two boxes coincide within the margin.
			if isAncestor(parentOf, o.ID, e.ID) {
				continue
			}
			if !fitsInside(e, o) {
				continue
			}
			parentOf[o.ID] = e.ID
			children[e.ID] = append(children[e.ID], o.ID)
		}
	}

	byID := make(map[string]geom.Element, len(elements))
	for _, e := range elements {
		byID[e.ID] = e
	}

	// Children in reading order.
	for id := range children {
		sortReadingOrder(children[id], byID)
	}

	var roots []string
	for _, e := range elements {
		if _, claimed := parentOf[e.ID]; !claimed {
			roots = append(roots, e.ID)
		}
	}
	sortReadingOrder(roots, byID)

	return Forest{Roots: roots, Children: children}
}

// fitsInside reports whether child lies within parent, both inflated by
// the fixed tolerance margin.
func fitsInside(parent, child geom.Element) bool {
	return child.X >= parent.X-Margin &&
		child.Y >= parent.Y-Margin &&
		child.X+child.W <= parent.X+parent.W+Margin &&
		child.Y+child.H <= parent.Y+parent.H+Margin
}

// isAncestor reports whether anc appears on node's parent chain.
func isAncestor(parentOf map[string]string, anc, node string) bool {
	for {
		p, ok := parentOf[node]
		if !ok {
			return false
		}
		if p == anc {
			return true
		}
		node = p
	}
}

func sortReadingOrder(ids []string, byID map[string]geom.Element) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := byID[ids[i]], byID[ids[j]]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.ID < b.ID
	})
}
