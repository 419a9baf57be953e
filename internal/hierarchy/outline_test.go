package hierarchy

import (
	"testing"

	"github.com/karnell/boxlens/internal/geom"
)

// forest fixture:
//
//	table ── row1 ── w1
//	      └─ row2 ── w2
//	para  ── line1
func outlineFixture() Forest {
	return Build([]geom.Element{
		elem("table", "Table", 0, 0, 400, 200),
		elem("row1", "TableCell", 10, 10, 380, 80),
		elem("row2", "TableCell", 10, 100, 380, 80),
		elem("w1", "Word", 20, 20, 30, 10),
		elem("w2", "Word", 20, 110, 30, 10),
		elem("para", "Paragraph", 0, 300, 400, 50),
		elem("line1", "Line", 10, 310, 380, 30),
	}, nil)
}

func TestExpandedVisible_NoExpansionMeansNoRestriction(t *testing.T) {
	f := outlineFixture()
	if got := ExpandedVisible(f, nil); got != nil {
		t.Errorf("expected nil (no restriction), got %v", got)
	}
	if got := ExpandedVisible(f, map[string]bool{}); got != nil {
		t.Errorf("expected nil for empty set, got %v", got)
	}
}

func TestExpandedVisible_StaleIDsIgnored(t *testing.T) {
	f := outlineFixture()
	// Expanded ids left over from another page.
	if got := ExpandedVisible(f, map[string]bool{"other-page-id": true}); got != nil {
		t.Errorf("expected nil when no expanded id is in the forest, got %v", got)
	}
}

func TestExpandedVisible_SingleExpandedShowsAllDescendants(t *testing.T) {
	f := outlineFixture()
	got := ExpandedVisible(f, map[string]bool{"table": true})

	for _, id := range []string{"row1", "row2", "w1", "w2"} {
		if !got[id] {
			t.Errorf("expected %s visible, allowed=%v", id, got)
		}
	}
	if got["table"] {
		t.Error("the expanded container itself must not be drawn")
	}
	if got["para"] || got["line1"] {
		t.Errorf("unrelated subtree leaked in: %v", got)
	}
}

func TestExpandedVisible_DeepestExpandedWins(t *testing.T) {
	f := outlineFixture()
	// Both the table and one of its rows expanded: only the row is
	// deepest-expanded, so only its descendants are drawn.
	got := ExpandedVisible(f, map[string]bool{"table": true, "row1": true})

	if !got["w1"] {
		t.Errorf("expected w1 visible, got %v", got)
	}
	if got["row2"] || got["w2"] {
		t.Errorf("coarser container's other children must not be drawn: %v", got)
	}
	if got["row1"] || got["table"] {
		t.Errorf("expanded nodes themselves must not be drawn: %v", got)
	}
}

func TestExpandedVisible_IndependentSubtrees(t *testing.T) {
	f := outlineFixture()
	got := ExpandedVisible(f, map[string]bool{"row2": true, "para": true})

	if !got["w2"] || !got["line1"] {
		t.Errorf("expected w2 and line1 visible, got %v", got)
	}
	if got["w1"] || got["row1"] {
		t.Errorf("unexpanded subtree leaked in: %v", got)
	}
}

func TestExpandedVisible_ExpandedLeafContributesNothing(t *testing.T) {
	f := outlineFixture()
	got := ExpandedVisible(f, map[string]bool{"w1": true})
	if got == nil {
		t.Fatal("expected a restriction set, got nil")
	}
	if len(got) != 0 {
		t.Errorf("a leaf has no descendants to draw, got %v", got)
	}
}
