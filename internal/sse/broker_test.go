package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsubscribe")
	}
}

func TestPublishRunCompleted(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeRunCompleted, Data: map[string]int{"written": 3}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.HasPrefix(s, "event: run.completed\n") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.HasSuffix(s, "data: {\"written\":3}\n\n") {
			t.Errorf("unexpected data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestDocumentEvents_SiteChangedThrottled(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishDocumentEvent("converted", "a.md")
	b.PublishDocumentEvent("removed", "b.md")
	time.Sleep(50 * time.Millisecond)

	var converted, removed, site int
	for _, s := range drain(ch) {
		switch {
		case strings.Contains(s, "event: "+TypeDocumentConverted):
			converted++
			if !strings.Contains(s, `"path":"a.md"`) {
				t.Errorf("converted event missing path: %q", s)
			}
		case strings.Contains(s, "event: "+TypeDocumentRemoved):
			removed++
		case strings.Contains(s, "event: "+TypeSiteChanged):
			site++
		}
	}
	if converted != 1 || removed != 1 {
		t.Errorf("converted = %d, removed = %d, want 1 each", converted, removed)
	}
	if site != 1 {
		t.Errorf("site.changed events = %d, want 1 (throttled)", site)
	}
}

func TestDocumentEvents_UnknownKindIgnored(t *testing.T) {
	b := NewBroker(10 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishDocumentEvent("renamed", "a.md")
	time.Sleep(50 * time.Millisecond)

	if got := drain(ch); len(got) != 0 {
		t.Errorf("unexpected events: %q", got)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishDocumentEvent("converted", "x.md")
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "event: document.converted") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: i})
	}
}

func TestCloseDisconnectsSubscribers(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{Type: TypeRunCompleted})
	b.PublishDocumentEvent("converted", "x.md")
}
