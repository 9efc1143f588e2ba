package notifications

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func TestBroadcast_DeliversToEverySession(t *testing.T) {
	s := NewService()

	ch1, unsub1 := s.Subscribe()
	defer unsub1()
	ch2, unsub2 := s.Subscribe()
	defer unsub2()

	if n := s.NotifyNewImage("frame.png"); n != 2 {
		t.Errorf("expected delivery to 2 sessions, got %d", n)
	}

	for i, ch := range []<-chan Event{ch1, ch2} {
		event := <-ch
		if event.Type != EventNewImage || event.File != "frame.png" {
			t.Errorf("session %d: unexpected event %+v", i, event)
		}
	}
}

func TestBroadcast_NoSessions(t *testing.T) {
	s := NewService()
	if n := s.NotifyNewImage("frame.png"); n != 0 {
		t.Errorf("expected 0 deliveries, got %d", n)
	}
}

func TestBroadcast_SlowSessionReceivesEveryEvent(t *testing.T) {
	s := NewService()

	slow, unsubSlow := s.Subscribe()
	defer unsubSlow()
	fast, unsubFast := s.Subscribe()
	defer unsubFast()

	const burst = 500
	go func() {
		for range fast {
		}
	}()

	// Must not block even though nobody reads slow yet
	for i := 0; i < burst; i++ {
		if n := s.NotifyNewImage(fmt.Sprintf("img_%04d.png", i)); n != 2 {
			t.Fatalf("event %d: expected delivery to 2 sessions, got %d", i, n)
		}
	}

	for i := 0; i < burst; i++ {
		select {
		case event := <-slow:
			if want := fmt.Sprintf("img_%04d.png", i); event.File != want {
				t.Fatalf("event %d: got %q, want %q", i, event.File, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d events", i, burst)
		}
	}
}

func TestBroadcast_OverflowClosesSession(t *testing.T) {
	s := NewService()

	stuck, unsub := s.Subscribe()
	defer unsub()

	// One event can sit in the hand-off to the channel, the rest queue up
	for i := 0; i < maxPendingEvents+2; i++ {
		s.NotifyNewImage("fill.png")
	}

	if s.SubscriberCount() != 0 {
		t.Fatalf("expected overflowing session to be removed, got %d sessions", s.SubscriberCount())
	}
	if n := s.NotifyNewImage("after.png"); n != 0 {
		t.Errorf("expected no delivery after overflow, got %d", n)
	}

	deadline := time.After(2 * time.Second)
	for received := 0; ; received++ {
		select {
		case _, ok := <-stuck:
			if !ok {
				return
			}
			if received > maxPendingEvents+1 {
				t.Fatal("received more events than were queued")
			}
		case <-deadline:
			t.Fatal("expected channel of overflowing session to be closed")
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	s := NewService()

	ch, unsub := s.Subscribe()
	if s.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", s.SubscriberCount())
	}

	unsub()
	unsub() // idempotent

	if s.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", s.SubscriberCount())
	}
	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}
	if n := s.NotifyNewImage("late.png"); n != 0 {
		t.Errorf("expected no delivery after unsubscribe, got %d", n)
	}
}

func TestShutdown(t *testing.T) {
	s := NewService()

	ch, unsub := s.Subscribe()
	s.Shutdown()
	s.Shutdown()
	unsub() // safe after shutdown

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed by Shutdown")
	}

	late, _ := s.Subscribe()
	if _, ok := <-late; ok {
		t.Error("expected subscription after Shutdown to be closed")
	}
	if s.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", s.SubscriberCount())
	}
}

func TestEvent_WireFormat(t *testing.T) {
	data, err := json.Marshal(Event{Type: EventNewImage, File: "a.png"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"type":"new_image","file":"a.png"}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
