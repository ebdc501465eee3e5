package catalog

// Deduplicator tracks ISBNs already accepted within one ingestion run.
// It is created per run and discarded afterwards; there is no cross-run
// state.
type Deduplicator struct {
	seen map[string]struct{}
}

// NewDeduplicator creates an empty Deduplicator for a single batch.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Accept records the ISBN and returns true the first time it is seen,
// false on every subsequent occurrence.
func (d *Deduplicator) Accept(isbn string) bool {
	if _, ok := d.seen[isbn]; ok {
		return false
	}
	d.seen[isbn] = struct{}{}
	return true
}

// Len returns the number of distinct ISBNs accepted so far.
func (d *Deduplicator) Len() int {
	return len(d.seen)
}
