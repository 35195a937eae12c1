package core

import (
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("event channel closed while waiting for kind %v", kind)
			}
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustClosed waits for the client's event channel to be closed by the hub,
// draining anything still buffered.
func mustClosed(t *testing.T, ch <-chan *Event) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatal("expected event channel to be closed")
}

// declare registers a client on the hub and completes the hello exchange.
func declare(t *testing.T, hub *Hub, connID, name, credential string) *Client {
	t.Helper()

	c := NewClient(connID)
	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandHello, Name: name, Credential: credential}
	mustEvent(t, c.Events, EventHistory)
	return c
}

// waitStopped blocks until the hub's Run loop has exited, so tests can
// inspect hub state without racing the hub goroutine.
func waitStopped(t *testing.T, hub *Hub) {
	t.Helper()

	select {
	case <-hub.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
}
