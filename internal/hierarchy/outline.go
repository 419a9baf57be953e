package hierarchy

// ExpandedVisible computes which element ids should be drawn as
// overlays in outline mode, given the session's expanded-node set.
//
// A node is deepest-expanded when it is expanded and none of its
// descendants are. Each deepest-expanded node contributes all of its
// descendants (not itself), so a container and its already-visible
// children are never drawn twice when both happen to be expanded.
//
// A nil result means "no restriction": nothing relevant is expanded and
// the caller falls back to flat visibility rules. This is distinct from
// an empty (but non-nil) set, which draws nothing.
func ExpandedVisible(f Forest, expanded map[string]bool) map[string]bool {
	// Expanded ids may be stale state from another page; only those
	// present in this forest count.
	var present []string
	for id := range expanded {
		if expanded[id] && f.Contains(id) {
			present = append(present, id)
		}
	}
	if len(present) == 0 {
		return nil
	}

	allowed := make(map[string]bool)
	for _, id := range present {
		if hasExpandedDescendant(f, id, expanded) {
			continue
		}
		for _, d := range f.Descendants(id) {
			allowed[d] = true
		}
	}
	return allowed
}

func hasExpandedDescendant(f Forest, id string, expanded map[string]bool) bool {
	for _, c := range f.Children[id] {
		if expanded[c] || hasExpandedDescendant(f, c, expanded) {
			return true
		}
	}
	return false
}
