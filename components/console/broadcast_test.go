package console

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterFiltersByViewer(t *testing.T) {
	b := NewBroadcaster()
	alice, cancelAlice := b.Subscribe("alice")
	defer cancelAlice()
	bob, cancelBob := b.Subscribe("bob")
	defer cancelBob()
	anonymous, cancelAnonymous := b.Subscribe("")
	defer cancelAnonymous()

	require.NoError(t, b.PublishToast(context.Background(), "bob", Toast{Message: "Client secret-bob créé"}))
	select {
	case evt := <-alice:
		t.Fatalf("alice received %v", evt)
	default:
	}
	select {
	case evt := <-anonymous:
		t.Fatalf("anonymous subscriber received %v", evt)
	default:
	}
	select {
	case evt := <-bob:
		assert.Equal(t, "Client secret-bob créé", evt.Toast.Message)
	default:
		t.Fatalf("expected event for bob")
	}

	b.Publish(Event{Type: "ping"})
	select {
	case evt := <-anonymous:
		assert.Equal(t, "ping", evt.Type)
	default:
		t.Fatalf("expected viewer-less event for anonymous subscriber")
	}
}

func TestBroadcasterStreamsRejectAnonymousViewers(t *testing.T) {
	b := NewBroadcaster()
	for name, handler := range map[string]http.HandlerFunc{
		"sse":       b.ServeSSE,
		"websocket": b.ServeWebSocket,
	} {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
	assert.Equal(t, 0, b.Subscribers())
}

func TestBroadcasterSSEUsesResolver(t *testing.T) {
	b := NewBroadcaster()
	server := httptest.NewServer(b.SSEHandler(func(r *http.Request) string {
		return r.Header.Get("X-Viewer")
	}))
	t.Cleanup(server.Close)

	req, err := http.NewRequest(http.MethodGet, server.URL+"?user=bob", nil)
	require.NoError(t, err)
	req.Header.Set("X-Viewer", "alice")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return b.Subscribers() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, b.PublishToast(context.Background(), "bob", Toast{Message: "pour bob"}))
	require.NoError(t, b.PublishToast(context.Background(), "alice", Toast{Message: "pour alice"}))

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "pour alice")
	assert.NotContains(t, line, "pour bob")
}

func TestViewerFromRequestPrefersHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?user=query", nil)
	assert.Equal(t, "query", ViewerFromRequest(req))
	req.Header.Set("X-User-ID", " header ")
	assert.Equal(t, "header", ViewerFromRequest(req))
}

func TestBroadcasterCancelClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe("x")
	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	b.Publish(Event{Type: "toast", Viewer: "x"})
}

func TestBroadcasterWebSocket(t *testing.T) {
	b := NewBroadcaster()
	server := httptest.NewServer(http.HandlerFunc(b.ServeWebSocket))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?user=42"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return b.Subscribers() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, b.PublishToast(context.Background(), "42", Toast{ID: "t1", Message: "Filtres appliqués"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var evt Event
	require.NoError(t, conn.ReadJSON(&evt))
	require.NotNil(t, evt.Toast)
	assert.Equal(t, "toast", evt.Type)
	assert.Equal(t, "Filtres appliqués", evt.Toast.Message)
}
