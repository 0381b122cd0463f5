package usersink_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/pkg/activity"
	"github.com/goliatone/go-admin-console/pkg/activity/usersink"
	"github.com/goliatone/go-admin-console/pkg/backend"
	"github.com/goliatone/go-admin-console/pkg/storage"
)

type recordingSink struct {
	mu      sync.Mutex
	records []types.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record types.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return s.err
}

func (s *recordingSink) byVerb(verb string) []types.ActivityRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.ActivityRecord
	for _, record := range s.records {
		if record.Verb == verb {
			out = append(out, record)
		}
	}
	return out
}

func emitterFor(sink *recordingSink) *activity.Emitter {
	return activity.NewEmitter(activity.Hooks{usersink.Hook{Sink: sink}}, activity.Config{Enabled: true})
}

func TestPreferenceSaveReachesSink(t *testing.T) {
	sink := &recordingSink{}
	viewer := uuid.New()
	store := console.NewPreferenceStore(console.PreferenceStoreOptions{
		UserID:   viewer.String(),
		Blobs:    storage.NewMemoryStore(),
		Activity: emitterFor(sink),
		Logger:   console.NopLogger(),
	})

	store.SetTheme(context.Background(), console.ThemeDark)

	records := sink.byVerb("update")
	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, viewer, record.ActorID)
	assert.Equal(t, viewer, record.UserID)
	assert.Equal(t, uuid.Nil, record.TenantID)
	assert.Equal(t, "preference", record.ObjectType)
	assert.Equal(t, console.StorageKey, record.ObjectID)
	assert.Equal(t, activity.DefaultChannel, record.Channel)
	assert.Equal(t, "dark", record.Data["theme"])
	assert.False(t, record.OccurredAt.IsZero())
}

func TestCreateOrderReachesSinkWithNilActorForNonUUIDViewer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost && r.URL.Path == "/orders" {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"ok":true,"id":9,"order_number":"CMD-9"}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client, err := backend.New(backend.Config{BaseURL: server.URL})
	require.NoError(t, err)

	sink := &recordingSink{}
	c := console.New(console.Options{
		UserID:      "admin@example.com",
		Backend:     client,
		ChartSource: console.NewSampleSource(3),
		Activity:    emitterFor(sink),
		Logger:      console.NopLogger(),
	})
	t.Cleanup(c.Close)
	c.Boot(context.Background(), "")

	out := c.Handle(context.Background(), console.Element{
		Action: "create-order",
		Form:   console.FormValues{"user_id": "77", "status": "pending"},
	})
	require.NotEmpty(t, out.Toasts)
	assert.Equal(t, "Commande CMD-9 créée", out.Toasts[0].Message)

	records := sink.byVerb("create")
	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, uuid.Nil, record.ActorID)
	assert.Equal(t, "order", record.ObjectType)
	assert.Equal(t, "9", record.ObjectID)
	assert.Equal(t, "CMD-9", record.Data["order_number"])
	c.Preferences().Wait()
}

func TestHookPropagatesSinkErrors(t *testing.T) {
	sinkErr := errors.New("activity table locked")
	hook := usersink.Hook{Sink: &recordingSink{err: sinkErr}}
	err := hook.Notify(context.Background(), activity.Event{Verb: "create", ObjectType: "client", ObjectID: "4"})
	assert.ErrorIs(t, err, sinkErr)

	assert.NoError(t, usersink.Hook{}.Notify(context.Background(), activity.Event{Verb: "create"}))
}

func TestHookCarriesRecipientsAndDefinitionCode(t *testing.T) {
	sink := &recordingSink{}
	err := usersink.Hook{Sink: sink}.Notify(context.Background(), activity.Event{
		Verb:           "seed",
		ObjectType:     "menu",
		ObjectID:       "admin.main",
		DefinitionCode: "menu:seed",
		Recipients:     []string{"ops@example.com"},
		Metadata:       map[string]any{"items": 6},
	})
	require.NoError(t, err)
	require.Len(t, sink.records, 1)
	data := sink.records[0].Data
	assert.Equal(t, "menu:seed", data["definition_code"])
	assert.Equal(t, []string{"ops@example.com"}, data["recipients"])
	assert.Equal(t, 6, data["items"])
}
