package notifications

import (
	"sync"

	"github.com/xiaoyuanzhu-com/debug-viewer/log"
)

// EventType represents the type of push message
type EventType string

const (
	EventNewImage EventType = "new_image"
)

// Event is the message pushed to every open viewer session
type Event struct {
	Type EventType `json:"type"`
	File string    `json:"file"`
}

// Events a session may have queued but not yet read. Every event names a
// different file, so a session that falls this far behind is closed rather
// than losing events; the viewer reconnects and reloads its listing.
const maxPendingEvents = 4096

// session queues events for one subscriber. Broadcast appends without
// blocking; pump hands them to the subscriber's channel in order.
type session struct {
	mu      sync.Mutex
	pending []Event

	wake      chan struct{}
	out       chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func newSession() *session {
	return &session{
		wake: make(chan struct{}, 1),
		out:  make(chan Event),
		done: make(chan struct{}),
	}
}

// enqueue reports false when the session is over its backlog limit
func (ss *session) enqueue(event Event) bool {
	ss.mu.Lock()
	if len(ss.pending) >= maxPendingEvents {
		ss.mu.Unlock()
		return false
	}
	ss.pending = append(ss.pending, event)
	ss.mu.Unlock()

	select {
	case ss.wake <- struct{}{}:
	default:
	}
	return true
}

func (ss *session) next() (Event, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if len(ss.pending) == 0 {
		return Event{}, false
	}
	event := ss.pending[0]
	ss.pending[0] = Event{}
	ss.pending = ss.pending[1:]
	return event, true
}

func (ss *session) close() {
	ss.closeOnce.Do(func() { close(ss.done) })
}

// pump delivers queued events until the session is closed, then closes out.
// Events still queued at that point are discarded with the session.
func (ss *session) pump() {
	defer close(ss.out)

	for {
		event, ok := ss.next()
		if !ok {
			select {
			case <-ss.wake:
				continue
			case <-ss.done:
				return
			}
		}

		select {
		case ss.out <- event:
		case <-ss.done:
			return
		}
	}
}

// Service manages viewer sessions and event broadcasting
type Service struct {
	mu       sync.RWMutex
	sessions map[*session]struct{}
	closed   bool
}

// NewService creates a new notification service
func NewService() *Service {
	return &Service{
		sessions: make(map[*session]struct{}),
	}
}

// Subscribe registers a new session.
// Returns the event channel and an unsubscribe function. The channel is
// closed on unsubscribe, on Shutdown, or when the session falls too far behind.
func (s *Service) Subscribe() (<-chan Event, func()) {
	ss := newSession()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ss.out)
		return ss.out, func() {}
	}
	s.sessions[ss] = struct{}{}
	s.mu.Unlock()

	go ss.pump()

	unsubscribe := func() {
		s.remove(ss)
	}
	return ss.out, unsubscribe
}

func (s *Service) remove(ss *session) {
	s.mu.Lock()
	delete(s.sessions, ss)
	s.mu.Unlock()
	ss.close()
}

// Broadcast queues an event for all sessions without blocking. A session
// over its backlog limit is closed instead of skipped.
// Returns the number of sessions the event was queued for.
func (s *Service) Broadcast(event Event) int {
	var overflowed []*session

	s.mu.RLock()
	queued := 0
	for ss := range s.sessions {
		if ss.enqueue(event) {
			queued++
		} else {
			overflowed = append(overflowed, ss)
		}
	}
	s.mu.RUnlock()

	for _, ss := range overflowed {
		log.Warn().
			Str("file", event.File).
			Int("pending", maxPendingEvents).
			Msg("viewer session too far behind, closing it")
		s.remove(ss)
	}
	return queued
}

// NotifyNewImage sends a new_image event for file
func (s *Service) NotifyNewImage(file string) int {
	return s.Broadcast(Event{
		Type: EventNewImage,
		File: file,
	})
}

// Shutdown closes every session channel. Later subscriptions are closed immediately.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for ss := range s.sessions {
		ss.close()
	}
	s.sessions = make(map[*session]struct{})
}

// SubscriberCount returns the number of active sessions
func (s *Service) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
