// Package dictionary holds the acronym vocabulary: entries, categories,
// validation, the embedded base catalog and the file formats used to move
// entries in and out.
//
// A Dictionary is immutable once built and safe for concurrent readers.
package dictionary

// Dictionary is a validated, immutable set of entries in registration order.
type Dictionary struct {
	entries    []Entry
	byKey      map[string]int
	bySurface  map[string]int
	byCategory map[Category][]int
}

// New validates entries and builds a Dictionary over a private copy of them.
// On failure the returned error is a ValidationErrors.
func New(entries []Entry) (*Dictionary, error) {
	if err := Validate(entries); err != nil {
		return nil, err
	}

	d := &Dictionary{
		entries:    make([]Entry, len(entries)),
		byKey:      make(map[string]int, len(entries)),
		bySurface:  make(map[string]int, len(entries)*2),
		byCategory: make(map[Category][]int),
	}
	for i, e := range entries {
		d.entries[i] = e.Clone()
		d.byKey[FoldKey(e.Key)] = i
		for _, s := range e.Surfaces() {
			d.bySurface[FoldKey(s)] = i
		}
		d.byCategory[e.Category] = append(d.byCategory[e.Category], i)
	}
	return d, nil
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// At returns the entry registered at position i. The returned value shares
// slices with the dictionary and must not be modified.
func (d *Dictionary) At(i int) Entry {
	return d.entries[i]
}

// Index returns the registration position of key, ignoring case.
func (d *Dictionary) Index(key string) (int, bool) {
	i, ok := d.byKey[FoldKey(key)]
	return i, ok
}

// Get returns a copy of the entry with the given key, ignoring case.
func (d *Dictionary) Get(key string) (Entry, bool) {
	i, ok := d.byKey[FoldKey(key)]
	if !ok {
		return Entry{}, false
	}
	return d.entries[i].Clone(), true
}

// Lookup resolves a key or an alias, ignoring case.
func (d *Dictionary) Lookup(surface string) (Entry, bool) {
	i, ok := d.bySurface[FoldKey(surface)]
	if !ok {
		return Entry{}, false
	}
	return d.entries[i].Clone(), true
}

// Entries returns a deep copy of all entries in registration order.
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.Clone()
	}
	return out
}

// Keys returns every key in registration order.
func (d *Dictionary) Keys() []string {
	out := make([]string, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.Key
	}
	return out
}

// InCategory returns the positions of the entries tagged with c, in
// registration order.
func (d *Dictionary) InCategory(c Category) []int {
	return d.byCategory[c]
}

// Stats returns entry counts per category plus totals.
func (d *Dictionary) Stats() map[string]int {
	stats := map[string]int{
		"entries":  len(d.entries),
		"surfaces": len(d.bySurface),
	}
	for c, idx := range d.byCategory {
		stats["category:"+string(c)] = len(idx)
	}
	return stats
}
