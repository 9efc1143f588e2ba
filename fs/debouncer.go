package fs

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventType represents the type of filesystem event
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventDelete
)

// Default quiet period after the last write before a created file is reported.
// Producers usually finish writing a frame well within this window.
const DefaultDebounceDelay = 150 * time.Millisecond

// String returns the string representation of an EventType
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// debouncer holds back created files until writes to them stop.
// CREATE starts a timer, WRITE only extends a pending CREATE, DELETE cancels it.
// onProcess runs once per created path that survives the delay.
type debouncer struct {
	pending   map[string]*time.Timer
	mu        sync.Mutex
	delay     time.Duration
	onProcess func(path string)
	stopping  atomic.Bool // Prevents new events during shutdown
}

// newDebouncer creates a debouncer with specified delay
func newDebouncer(delay time.Duration, onProcess func(path string)) *debouncer {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &debouncer{
		pending:   make(map[string]*time.Timer),
		delay:     delay,
		onProcess: onProcess,
	}
}

// Queue records an event for path. Returns false if the event was ignored
// (debouncer stopping, or a WRITE/DELETE with no pending CREATE).
func (d *debouncer) Queue(path string, eventType EventType) bool {
	if d.stopping.Load() {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Double-check after acquiring lock (prevents race with Stop)
	if d.stopping.Load() {
		return false
	}

	timer, isPending := d.pending[path]

	switch eventType {
	case EventDelete:
		if !isPending {
			return false
		}
		timer.Stop()
		delete(d.pending, path)
		return true

	case EventWrite:
		if !isPending {
			// Modification of a file we never saw created
			return false
		}
		if !timer.Reset(d.delay) {
			// Timer already fired and onTimer owns the entry
			return false
		}
		return true

	case EventCreate:
		if isPending {
			// Duplicate CREATE (e.g. truncate-and-rewrite): keep a single report
			if timer.Reset(d.delay) {
				return true
			}
		}
		d.pending[path] = time.AfterFunc(d.delay, func() {
			d.onTimer(path)
		})
		return true
	}

	return false
}

// onTimer fires when debounce delay expires
func (d *debouncer) onTimer(path string) {
	d.mu.Lock()
	_, ok := d.pending[path]
	if ok {
		delete(d.pending, path)
	}
	d.mu.Unlock()

	if ok && !d.stopping.Load() {
		d.onProcess(path)
	}
}

// Stop cancels all pending events and prevents new ones from being queued.
func (d *debouncer) Stop() {
	d.stopping.Store(true)

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, timer := range d.pending {
		timer.Stop()
	}
	d.pending = make(map[string]*time.Timer)
}

// PendingCount returns the number of pending events (for testing)
func (d *debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
