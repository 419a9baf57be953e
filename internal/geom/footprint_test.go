package geom

import "testing"

func rect(x, y, w, h float64, page int) Rect {
	return Rect{X: x, Y: y, W: w, H: h, Page: page, LayoutW: 800, LayoutH: 1000}
}

func TestResolveBox_AtomicChunkPrefersSingleBox(t *testing.T) {
	single := rect(10, 10, 50, 20, 1)
	conflicting := rect(99, 99, 1, 1, 1)
	c := Chunk{
		ElementID: "c1",
		SingleBox: &single,
		PageBoxes: []Rect{conflicting},
		OrigBoxes: []Element{{ID: "e1", Page: 1}},
	}

	got := ResolveBox(c, 1)
	if got == nil {
		t.Fatal("expected a box, got nil")
	}
	if got.X != single.X || got.Y != single.Y {
		t.Errorf("expected single box %+v, got %+v", single, *got)
	}
}

func TestResolveBox_MultiPageDisambiguation(t *testing.T) {
	single := rect(0, 0, 100, 100, 1)
	p1 := rect(5, 5, 90, 40, 1)
	p2 := rect(5, 5, 90, 60, 2)
	c := Chunk{
		ElementID: "c2",
		SingleBox: &single,
		PageBoxes: []Rect{p1, p2},
		OrigBoxes: []Element{{ID: "a", Page: 1}, {ID: "b", Page: 2}},
	}

	got := ResolveBox(c, 1)
	if got == nil || got.H != 40 {
		t.Fatalf("page 1: expected page-1 box, got %+v", got)
	}
	got = ResolveBox(c, 2)
	if got == nil || got.H != 60 {
		t.Fatalf("page 2: expected page-2 box, got %+v", got)
	}
}

func TestResolveBox_FallbackToSingleBox(t *testing.T) {
	// Multi-element chunk with no page-boxes entry for the requested
	// page: the single box is returned as a documented approximation.
	single := rect(0, 0, 100, 100, 1)
	c := Chunk{
		ElementID: "c3",
		SingleBox: &single,
		OrigBoxes: []Element{{ID: "a", Page: 1}, {ID: "b", Page: 2}},
	}

	got := ResolveBox(c, 2)
	if got == nil {
		t.Fatal("expected fallback to single box, got nil")
	}
	if got.W != 100 {
		t.Errorf("expected single box, got %+v", *got)
	}
}

func TestResolveBox_NoFootprint(t *testing.T) {
	c := Chunk{
		ElementID: "c4",
		PageBoxes: []Rect{rect(0, 0, 10, 10, 1), rect(0, 0, 10, 10, 2)},
		OrigBoxes: []Element{{ID: "a", Page: 1}, {ID: "b", Page: 2}},
	}
	if got := ResolveBox(c, 3); got != nil {
		t.Errorf("expected nil for page with no box, got %+v", *got)
	}

	empty := Chunk{ElementID: "c5"}
	if got := ResolveBox(empty, 1); got != nil {
		t.Errorf("expected nil for chunk without geometry, got %+v", *got)
	}
}

func TestResolveBox_ReturnsCopy(t *testing.T) {
	single := rect(1, 2, 3, 4, 1)
	c := Chunk{ElementID: "c6", SingleBox: &single}
	got := ResolveBox(c, 1)
	got.X = 999
	if c.SingleBox.X != 1 {
		t.Error("ResolveBox must not alias the chunk's own rect")
	}
}

func TestChunkPages_FromPageBoxes(t *testing.T) {
	c := Chunk{
		PageBoxes: []Rect{rect(0, 0, 1, 1, 3), rect(0, 0, 1, 1, 1), rect(0, 0, 1, 1, 3)},
	}
	got := ChunkPages(c)
	want := []int{1, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("page[%d]: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestChunkPages_FromSingleBox(t *testing.T) {
	single := rect(0, 0, 1, 1, 7)
	c := Chunk{SingleBox: &single}
	got := ChunkPages(c)
	if len(got) != 1 || got[0] != 7 {
		t.Errorf("expected [7], got %v", got)
	}
}

func TestChunkPages_Empty(t *testing.T) {
	if got := ChunkPages(Chunk{}); len(got) != 0 {
		t.Errorf("expected no pages, got %v", got)
	}
}
