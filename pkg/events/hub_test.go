package events

import (
	"math"
	"testing"
)

func TestHubPublish(t *testing.T) {
	h := NewHub(0)
	a := h.Subscribe()
	b := h.Subscribe()
	if h.Subscribers() != 2 {
		t.Fatalf("Subscribers() = %d, want 2", h.Subscribers())
	}

	if err := h.Publish(EngineChanged, EngineChangedEvent{Reason: "reload", DefaultAngle: 25, Trace: true}); err != nil {
		t.Fatal(err)
	}

	for _, s := range []*Subscription{a, b} {
		ev := <-s.C
		if ev.Name != EngineChanged {
			t.Errorf("Name = %q", ev.Name)
		}
		payload, err := DecodeAs[EngineChangedEvent](ev)
		if err != nil {
			t.Fatalf("DecodeAs() error = %v", err)
		}
		if payload.Reason != "reload" || payload.DefaultAngle != 25 || !payload.Trace {
			t.Errorf("payload = %+v", payload)
		}
	}

	a.Close()
	a.Close()
	if _, ok := <-a.C; ok {
		t.Errorf("closed subscription should have a closed channel")
	}
	if h.Subscribers() != 1 {
		t.Errorf("Subscribers() = %d, want 1", h.Subscribers())
	}
}

func TestHubKeepsNewestForSlowSubscriber(t *testing.T) {
	h := NewHub(2)
	s := h.Subscribe()
	defer s.Close()

	for _, reason := range []string{"a", "b", "c", "d"} {
		if err := h.Publish(EngineChanged, EngineChangedEvent{Reason: reason}); err != nil {
			t.Fatal(err)
		}
	}

	var got []string
	for len(s.C) > 0 {
		payload, err := DecodeAs[EngineChangedEvent](<-s.C)
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, payload.Reason)
	}
	if len(got) != 2 || got[0] != "c" || got[1] != "d" {
		t.Errorf("received %v, want [c d]", got)
	}
}

func TestPublishErrors(t *testing.T) {
	var nilHub *Hub
	if err := nilHub.Publish(EngineChanged, nil); err != nil {
		t.Errorf("nil hub: %v", err)
	}

	h := NewHub(1)
	if err := h.Publish(EngineChanged, math.NaN()); err == nil {
		t.Errorf("expected an error for an unencodable payload")
	}
}

func TestDecodeAsEmpty(t *testing.T) {
	v, err := DecodeAs[EngineChangedEvent](Event{Name: EngineChanged})
	if err != nil || v != (EngineChangedEvent{}) {
		t.Errorf("DecodeAs(empty) = %+v, %v", v, err)
	}
}
