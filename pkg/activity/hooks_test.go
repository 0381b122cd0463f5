package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHooksFanOutAndJoinErrors(t *testing.T) {
	var seen []string
	record := func(name string, err error) Hook {
		return HookFunc(func(_ context.Context, evt Event) error {
			seen = append(seen, name+":"+evt.Verb+"/"+evt.ObjectType+"/"+evt.ObjectID)
			return err
		})
	}
	auditErr := errors.New("audit store offline")
	hooks := Hooks{record("log", nil), nil, record("audit", auditErr)}

	err := hooks.Notify(context.Background(), Event{Verb: " create ", ObjectType: "client", ObjectID: " 4 "})
	if !errors.Is(err, auditErr) {
		t.Fatalf("expected audit error to be joined, got %v", err)
	}
	want := []string{"log:create/client/4", "audit:create/client/4"}
	if len(seen) != len(want) || seen[0] != want[0] || seen[1] != want[1] {
		t.Fatalf("unexpected deliveries %v", seen)
	}
}

func TestHooksDropEventsWithoutObject(t *testing.T) {
	called := 0
	hooks := Hooks{HookFunc(func(context.Context, Event) error {
		called++
		return nil
	})}
	for _, evt := range []Event{
		{},
		{Verb: "update", ObjectType: "preference"},
		{Verb: "update", ObjectID: "admin_console_theme_v1"},
		{Verb: "   ", ObjectType: "order", ObjectID: "9"},
	} {
		if err := hooks.Notify(context.Background(), evt); err != nil {
			t.Fatalf("invalid event returned error: %v", err)
		}
	}
	if called != 0 {
		t.Fatalf("expected invalid events to be dropped, got %d deliveries", called)
	}
}

func TestNormalizeEventStampsAndDetaches(t *testing.T) {
	meta := map[string]any{"order_number": "CMD-9"}
	before := time.Now().UTC()
	evt := NormalizeEvent(Event{Verb: "create", ObjectType: "order", ObjectID: "9", Metadata: meta})

	if evt.OccurredAt.Before(before) || evt.OccurredAt.Location() != time.UTC {
		t.Fatalf("expected a UTC timestamp after %v, got %v", before, evt.OccurredAt)
	}
	evt.Metadata["order_number"] = "CMD-10"
	if meta["order_number"] != "CMD-9" {
		t.Fatalf("normalized metadata must not alias the caller's map")
	}

	fixed := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	if got := NormalizeEvent(Event{OccurredAt: fixed}).OccurredAt; !got.Equal(fixed) {
		t.Fatalf("expected occurred_at to be kept, got %v", got)
	}
}
