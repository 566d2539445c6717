// Package sse streams conversion events to HTTP clients as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types sent to clients.
const (
	TypeDocumentConverted = "document.converted"
	TypeDocumentRemoved   = "document.removed"
	TypeSiteChanged       = "site.changed"
	TypeRunCompleted      = "run.completed"
)

// Event is one message broadcast to every client.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type documentEvent struct {
	kind string
	path string
}

// Broker fans events out to connected clients.
//
// One goroutine owns the client set and the site.changed throttle; the
// exported methods only talk to it over channels.
type Broker struct {
	siteEvery time.Duration
	keepAlive time.Duration

	join   chan chan []byte
	leave  chan chan []byte
	events chan Event
	docs   chan documentEvent
	count  chan chan int

	stop    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits site.changed at most once per
// siteThrottle.
func NewBroker(siteThrottle time.Duration) *Broker {
	if siteThrottle <= 0 {
		siteThrottle = 2 * time.Second
	}

	b := &Broker{
		siteEvery: siteThrottle,
		keepAlive: 30 * time.Second,
		join:      make(chan chan []byte),
		leave:     make(chan chan []byte),
		events:    make(chan Event, 256),
		docs:      make(chan documentEvent, 256),
		count:     make(chan chan int),
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}

	go b.loop()
	return b
}

// encode renders an event in the text/event-stream wire format.
func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), nil
}

func (b *Broker) loop() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastSite time.Time

	send := func(event Event) {
		msg, err := encode(event)
		if err != nil {
			return
		}
		for ch := range clients {
			select {
			case ch <- msg:
			default:
				// Slow client; drop rather than stall everyone else.
			}
		}
	}

	for {
		select {
		case <-b.stop:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.join:
			clients[ch] = struct{}{}

		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.events:
			send(event)

		case ev := <-b.docs:
			data := map[string]string{"path": ev.path}
			switch ev.kind {
			case "converted":
				send(Event{Type: TypeDocumentConverted, Data: data})
			case "removed":
				send(Event{Type: TypeDocumentRemoved, Data: data})
			default:
				continue
			}

			if now := time.Now(); now.Sub(lastSite) >= b.siteEvery {
				lastSite = now
				send(Event{Type: TypeSiteChanged, Data: map[string]string{}})
			}

		case resp := <-b.count:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and disconnects all clients.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.stopped
}

// Subscribe registers a client and returns its message channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leave <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.count <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish broadcasts an arbitrary event.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.events <- event:
	case <-b.stopped:
	}
}

// PublishDocumentEvent broadcasts a pipeline event ("converted" or
// "removed") followed by a throttled site.changed event. Its signature
// matches pipeline.EventCallback.
func (b *Broker) PublishDocumentEvent(kind, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.docs <- documentEvent{kind: kind, path: path}:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client until it disconnects.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(b.keepAlive)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
