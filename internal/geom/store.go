package geom

import "sync"

// Store holds the element and chunk sets for the currently loaded
// document. Elements are kept for one page at a time and discarded on
// page change; chunks and reviews are document-wide.
type Store struct {
	mu       sync.Mutex
	doc      string
	page     int
	elements map[string]Element
	chunks   []Chunk
	reviews  map[ReviewKey]Review
}

func NewStore() *Store {
	return &Store{
		elements: make(map[string]Element),
		reviews:  make(map[ReviewKey]Review),
	}
}

// SetDocument switches the loaded document, dropping all cached state
// when the document actually changes.
func (s *Store) SetDocument(doc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == doc {
		return
	}
	s.doc = doc
	s.page = 0
	s.elements = make(map[string]Element)
	s.chunks = nil
	s.reviews = make(map[ReviewKey]Review)
}

// SetPageElements replaces the element set with the given page's
// elements. The previous page's elements are discarded.
func (s *Store) SetPageElements(page int, elems map[string]Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
	s.elements = make(map[string]Element, len(elems))
	for id, e := range elems {
		s.elements[id] = e
	}
}

// PageElements returns a copy of the element set if it belongs to the
// requested page, else nil.
func (s *Store) PageElements(page int) map[string]Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page != s.page || len(s.elements) == 0 {
		return nil
	}
	out := make(map[string]Element, len(s.elements))
	for id, e := range s.elements {
		out[id] = e
	}
	return out
}

// SetChunks replaces the document's chunk list.
func (s *Store) SetChunks(chunks []Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = make([]Chunk, len(chunks))
	copy(s.chunks, chunks)
}

// Chunks returns a copy of the document's chunk list.
func (s *Store) Chunks() []Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// SetReviews replaces the review index.
func (s *Store) SetReviews(items []Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = IndexReviews(items)
}

// Review looks up the rating for (kind, id); RatingNone if absent.
func (s *Store) Review(kind, id string) Rating {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviews[ReviewKey{Kind: kind, ItemID: id}].Rating
}
