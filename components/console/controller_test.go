package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/goliatone/go-admin-console/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	lastTemplate string
	lastPayload  map[string]any
	err          error
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.lastTemplate = name
	if payload, ok := data.(map[string]any); ok {
		r.lastPayload = payload
	}
	if len(out) > 0 && out[0] != nil {
		_, _ = out[0].Write([]byte("<html></html>"))
	}
	return "<html></html>", r.err
}

func newControllerSessions(t *testing.T) *Sessions {
	t.Helper()
	blobs := storage.NewMemoryStore()
	sessions := NewSessions(func(string) Options {
		return Options{Blobs: blobs, ChartSource: NewSampleSource(3), Logger: NopLogger()}
	})
	t.Cleanup(sessions.Close)
	return sessions
}

func TestControllerRenderTemplate(t *testing.T) {
	renderer := &stubRenderer{}
	controller := NewController(ControllerOptions{
		Sessions: newControllerSessions(t),
		Renderer: renderer,
		APIBase:  "/admin/api/console/",
	})

	var buf bytes.Buffer
	require.NoError(t, controller.RenderTemplate(context.Background(), "9", "#settings", &buf))
	assert.Equal(t, "console.html", renderer.lastTemplate)
	assert.NotZero(t, buf.Len())

	payload := renderer.lastPayload
	require.NotNil(t, payload)
	assert.Equal(t, "settings", payload["active"])
	assert.Equal(t, "Paramètres", payload["title"])
	assert.Equal(t, "/admin/api/console", payload["api_base"])
	charts, ok := payload["charts"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, charts, 3)
	assert.Equal(t, "sales", charts[0]["id"])
	assert.True(t, strings.Contains(charts[0]["html"].(string), "<div"))
	assert.NotContains(t, payload, "grid")
}

func TestControllerRequiresDependencies(t *testing.T) {
	var buf bytes.Buffer
	if err := NewController(ControllerOptions{}).RenderTemplate(context.Background(), "1", "", &buf); err == nil {
		t.Fatalf("expected error without renderer")
	}
	if _, err := NewController(ControllerOptions{Renderer: &stubRenderer{}}).Payload(context.Background(), "1", ""); err == nil {
		t.Fatalf("expected error without sessions")
	}
}
