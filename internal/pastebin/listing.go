package pastebin

// Entry is one item of the archive listing.
type Entry struct {
	ID     string
	Format string
	Title  string
}

// Listing maps entry IDs to entries and remembers the order they were parsed
// in, so consumers can take them deterministically.
type Listing struct {
	order   []string
	entries map[string]Entry
}

// NewListing returns an empty listing.
func NewListing() *Listing {
	return &Listing{entries: map[string]Entry{}}
}

// Add stores entry; a repeated ID replaces the value but keeps its position.
func (l *Listing) Add(entry Entry) {
	if _, ok := l.entries[entry.ID]; !ok {
		l.order = append(l.order, entry.ID)
	}
	l.entries[entry.ID] = entry
}

// Get looks up an entry by ID.
func (l *Listing) Get(id string) (Entry, bool) {
	if l == nil {
		return Entry{}, false
	}
	entry, ok := l.entries[id]
	return entry, ok
}

// Len is the number of entries not yet consumed. A nil listing is empty.
func (l *Listing) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// IDs returns the remaining IDs in parse order.
func (l *Listing) IDs() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.order...)
}

// Pop removes and returns the first entry in parse order.
func (l *Listing) Pop() (Entry, bool) {
	if l.Len() == 0 {
		return Entry{}, false
	}
	id := l.order[0]
	l.order = l.order[1:]
	entry := l.entries[id]
	delete(l.entries, id)
	return entry, true
}
