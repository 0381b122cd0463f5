package goadmin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-admin-console/components/console"
	activitypkg "github.com/goliatone/go-admin-console/pkg/activity"
	"github.com/goliatone/go-admin-console/pkg/goadmin"
)

type stubMenuBuilder struct {
	items []goadmin.MenuItem
	codes []string
	err   error
}

func (s *stubMenuBuilder) EnsureMenuItem(_ context.Context, code string, item goadmin.MenuItem) error {
	if s.err != nil {
		return s.err
	}
	s.codes = append(s.codes, code)
	s.items = append(s.items, item)
	return nil
}

func newSessions() *console.Sessions {
	return console.NewSessions(func(userID string) console.Options {
		return console.Options{UserID: userID, ChartSource: console.NewSampleSource(1), Logger: console.NopLogger()}
	})
}

func TestAdminBootstrapSeedsOneItemPerView(t *testing.T) {
	builder := &stubMenuBuilder{}
	var events []activitypkg.Event
	admin, err := goadmin.New(goadmin.Config{
		EnableConsole: true,
		Sessions:      newSessions(),
		MenuBuilder:   builder,
		Terminology:   console.TerminologyCommerce,
		ActivityHooks: activitypkg.Hooks{activitypkg.HookFunc(func(_ context.Context, evt activitypkg.Event) error {
			events = append(events, evt)
			return nil
		})},
		ActivityConfig: activitypkg.Config{Enabled: true},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if len(builder.items) != len(console.DefaultViews) {
		t.Fatalf("expected %d items, got %d", len(console.DefaultViews), len(builder.items))
	}
	orders := builder.items[1]
	if orders.Label != "Ventes" || orders.Route != "/admin/console#orders" || orders.Icon != "shopping-cart" || orders.Position != 1 {
		t.Fatalf("unexpected orders item %#v", orders)
	}
	if builder.codes[0] != "admin.main" {
		t.Fatalf("expected default menu code, got %s", builder.codes[0])
	}
	if len(events) != 1 || events[0].ObjectID != "admin.main" {
		t.Fatalf("expected one seed event, got %#v", events)
	}
	if admin.Sessions() == nil {
		t.Fatalf("expected console sessions")
	}
}

func TestAdminBootstrapPropagatesBuilderError(t *testing.T) {
	builder := &stubMenuBuilder{err: errors.New("menu offline")}
	admin, err := goadmin.New(goadmin.Config{EnableConsole: true, Sessions: newSessions(), MenuBuilder: builder})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err == nil {
		t.Fatalf("expected builder error")
	}
}

func TestAdminDisabledSkipsBootstrap(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableConsole: false,
		MenuBuilder:   builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if len(builder.items) != 0 {
		t.Fatalf("expected 0 calls, got %d", len(builder.items))
	}
	if admin.Sessions() != nil {
		t.Fatalf("expected nil sessions when disabled")
	}
}

func TestAdminRequiresSessionsWhenEnabled(t *testing.T) {
	if _, err := goadmin.New(goadmin.Config{EnableConsole: true}); err == nil {
		t.Fatalf("expected error without sessions")
	}
}

func TestAdminMenuItemsHonorCustomBasePathAndIcons(t *testing.T) {
	admin, err := goadmin.New(goadmin.Config{
		BasePath: "/backoffice/console/",
		Views:    []string{"settings", "reports"},
		Icons:    map[string]string{"settings": "cog"},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	items := admin.MenuItems()
	if items[0].Route != "/backoffice/console#settings" || items[0].Icon != "cog" || items[0].Label != "Paramètres" {
		t.Fatalf("unexpected settings item %#v", items[0])
	}
	if items[1].Label != "reports" || items[1].Icon != "" {
		t.Fatalf("unknown views fall back to their name, got %#v", items[1])
	}
}
