package sse

import (
	"bytes"
	"testing"
	"time"

	"github.com/meetscribe/meetscribe/internal/logger"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(logger.NewDefault("sse-test"))
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func waitCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("client count never reached %d (got %d)", want, h.ClientCount())
}

func TestRegisterUnregister(t *testing.T) {
	h := newTestHub(t)

	c := NewClient("meeting:abc:1")
	h.Register(c)
	waitCount(t, h, 1)

	h.Unregister(c)
	waitCount(t, h, 0)

	// Channel is closed on unregister.
	select {
	case _, ok := <-c.Events():
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

func TestBroadcastToPattern(t *testing.T) {
	h := newTestHub(t)

	sub := NewClient("meeting:abc:client1")
	other := NewClient("meeting:xyz:client2")
	h.Register(sub)
	h.Register(other)
	waitCount(t, h, 2)

	h.BroadcastToPattern("meeting:abc:*", []byte("payload"))

	select {
	case data := <-sub.Events():
		if string(data) != "payload" {
			t.Fatalf("unexpected payload %q", data)
		}
	case <-time.After(time.Second):
		t.Fatal("subscribed client did not receive broadcast")
	}

	select {
	case data := <-other.Events():
		t.Fatalf("unrelated client received %q", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowClientDropsMessages(t *testing.T) {
	h := newTestHub(t)

	c := NewClient("meeting:abc:slow")
	h.Register(c)
	waitCount(t, h, 1)

	// Fill the buffer without reading; extra messages are dropped, not
	// blocking the hub.
	for i := 0; i < 300; i++ {
		h.BroadcastToPattern("meeting:abc:*", []byte("m"))
	}

	h.BroadcastToPattern("meeting:abc:*", []byte("after"))
	waitCount(t, h, 1)
}

func TestFormat(t *testing.T) {
	data, err := Format(EventTypeTranscript, map[string]string{"text": "hi"})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("event: transcript\ndata: ")) {
		t.Fatalf("unexpected frame %q", data)
	}
	if !bytes.HasSuffix(data, []byte("\n\n")) {
		t.Fatalf("frame must end with blank line: %q", data)
	}
}
