package websocket

import (
	"fmt"
	"testing"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	h := NewHub()
	s := h.subscribe("job-1")
	defer h.unsubscribe(s)

	h.BroadcastProgress("job-1", 10, "processing", "submitting")

	select {
	case msg := <-s.send:
		if len(msg) == 0 {
			t.Fatal("empty message delivered")
		}
	default:
		t.Fatal("no message delivered")
	}
}

func TestPublishDropsSlowSubscriber(t *testing.T) {
	h := NewHub()
	s := h.subscribe("job-1")

	for i := 0; i <= sendBuffer; i++ {
		h.publish("job-1", map[string]int{"n": i})
	}

	select {
	case <-s.done:
	default:
		t.Fatal("slow subscriber was not dropped")
	}

	h.mu.RLock()
	_, still := h.subs["job-1"]
	h.mu.RUnlock()
	if still {
		t.Fatal("dropped subscriber still registered")
	}
}

func TestEnqueueAfterDropDoesNotPanic(t *testing.T) {
	h := NewHub()
	s := h.subscribe("job-1")

	// Fill the buffer so the next publish drops the subscriber, then try
	// the reader-side send that used to race against the drop.
	for i := 0; i <= sendBuffer; i++ {
		h.publish("job-1", map[string]string{"seq": fmt.Sprint(i)})
	}

	if s.enqueue([]byte(`{"type":"pong"}`)) {
		t.Fatal("enqueue succeeded on a dropped subscriber")
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	h := NewHub()
	s := h.subscribe("job-1")
	h.unsubscribe(s)
	h.unsubscribe(s)

	h.publish("job-1", map[string]string{"type": "progress"})
}
