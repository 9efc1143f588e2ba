package viewer

import "sync"

// DefaultDisplayLimit bounds the number of entries a viewer keeps
const DefaultDisplayLimit = 200

// DisplayList is the ordered set of images a viewer shows, newest first.
// Only Prepend enforces the limit; pages appended by scrolling may grow the
// list past it until the next push arrives.
type DisplayList struct {
	mu    sync.Mutex
	limit int
	items []string
}

// NewDisplayList creates a list bounded at limit (DefaultDisplayLimit if not positive)
func NewDisplayList(limit int) *DisplayList {
	if limit < 1 {
		limit = DefaultDisplayLimit
	}
	return &DisplayList{limit: limit}
}

// Append adds files at the tail in order
func (l *DisplayList) Append(files ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, files...)
}

// Prepend adds file at the head and drops entries from the tail until the
// list fits the limit. Returns the dropped entries, oldest last.
func (l *DisplayList) Prepend(file string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = append(l.items, "")
	copy(l.items[1:], l.items)
	l.items[0] = file

	if len(l.items) <= l.limit {
		return nil
	}
	dropped := append([]string(nil), l.items[l.limit:]...)
	clear(l.items[l.limit:])
	l.items = l.items[:l.limit]
	return dropped
}

// Items returns a copy of the current entries
func (l *DisplayList) Items() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.items...)
}

// Len returns the number of entries
func (l *DisplayList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Limit returns the configured bound
func (l *DisplayList) Limit() int {
	return l.limit
}
