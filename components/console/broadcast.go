package console

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is pushed to live clients.
type Event struct {
	Type   string `json:"type"`
	Viewer string `json:"viewer,omitempty"`
	Toast  *Toast `json:"toast,omitempty"`
}

// Broadcaster fans out console events to in-process subscribers. It satisfies
// ToastPublisher.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[int]subscriber
	next int
}

type subscriber struct {
	viewer string
	ch     chan Event
}

// NewBroadcaster creates a broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]subscriber)}
}

// PublishToast delivers a toast to the viewer's subscribers. Slow subscribers
// drop events rather than block the publisher.
func (b *Broadcaster) PublishToast(_ context.Context, viewer string, toast Toast) error {
	b.Publish(Event{Type: "toast", Viewer: viewer, Toast: &toast})
	return nil
}

// Publish delivers evt to the subscribers of its viewer. Matching is exact: an
// empty viewer only sees events published without a viewer.
func (b *Broadcaster) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.viewer != evt.Viewer {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
		}
	}
}

// Subscribe returns a channel of events for viewer and a cancel func.
func (b *Broadcaster) Subscribe(viewer string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Event, 8)
	b.subs[id] = subscriber{viewer: viewer, ch: ch}
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub.ch)
		}
	}
	return ch, cancel
}

// Subscribers reports the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// ViewerResolver names the viewer a stream request belongs to.
type ViewerResolver func(*http.Request) string

// ViewerFromRequest reads X-User-ID, then the user query parameter.
func ViewerFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-User-ID")); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("user"))
}

// A nil CheckOrigin keeps gorilla's same-origin check.
var upgrader = websocket.Upgrader{}

// ServeWebSocket streams events to the viewer resolved by ViewerFromRequest.
func (b *Broadcaster) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	b.WebSocketHandler(nil)(w, r)
}

// ServeSSE streams events to the viewer resolved by ViewerFromRequest as
// Server-Sent Events.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request) {
	b.SSEHandler(nil)(w, r)
}

// WebSocketHandler upgrades the request and streams the resolved viewer's
// events. Requests without a viewer are rejected.
func (b *Broadcaster) WebSocketHandler(resolve ViewerResolver) http.HandlerFunc {
	resolve = normalizeViewerResolver(resolve)
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := resolve(r)
		if viewer == "" {
			http.Error(w, "viewer required", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		events, cancel := b.Subscribe(viewer)
		defer cancel()

		// The read loop only exists to notice the client going away.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-closed:
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				if err := conn.WriteJSON(evt); err != nil {
					return
				}
			}
		}
	}
}

// SSEHandler streams the resolved viewer's events as Server-Sent Events.
// Requests without a viewer are rejected.
func (b *Broadcaster) SSEHandler(resolve ViewerResolver) http.HandlerFunc {
	resolve = normalizeViewerResolver(resolve)
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := resolve(r)
		if viewer == "" {
			http.Error(w, "viewer required", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		events, cancel := b.Subscribe(viewer)
		defer cancel()

		encoder := json.NewEncoder(w)
		flusher, _ := w.(http.Flusher)
		if flusher != nil {
			flusher.Flush()
		}

		for {
			select {
			case <-r.Context().Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				_, _ = w.Write([]byte("data: "))
				if err := encoder.Encode(evt); err != nil {
					return
				}
				_, _ = w.Write([]byte("\n"))
				if flusher != nil {
					flusher.Flush()
				}
			}
		}
	}
}

func normalizeViewerResolver(resolve ViewerResolver) ViewerResolver {
	if resolve == nil {
		return ViewerFromRequest
	}
	return func(r *http.Request) string {
		return strings.TrimSpace(resolve(r))
	}
}
