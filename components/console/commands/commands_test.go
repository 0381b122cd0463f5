package commands

import (
	"context"
	"testing"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/pkg/storage"
)

func newTestSessions(t *testing.T) *console.Sessions {
	t.Helper()
	blobs := storage.NewMemoryStore()
	sessions := console.NewSessions(func(string) console.Options {
		return console.Options{
			Blobs:       blobs,
			ChartSource: console.NewSampleSource(1),
			Logger:      console.NopLogger(),
		}
	})
	t.Cleanup(sessions.Close)
	return sessions
}

func TestDispatchActionCommandNavigates(t *testing.T) {
	sessions := newTestSessions(t)
	telemetry := &stubTelemetry{}
	cmd := NewDispatchActionCommand(sessions, telemetry)

	var out console.Outcome
	err := cmd.Execute(context.Background(), DispatchActionInput{
		UserID:  "7",
		Element: console.Element{Action: "navigate", Attrs: map[string]string{"view": "settings"}},
		Result:  &out,
	})
	if err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if !out.Handled || out.View == nil || out.View.Active != "settings" {
		t.Fatalf("expected settings view, got %+v", out.View)
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry to be recorded")
	}
	if got := sessions.Get(context.Background(), "7", "").Preferences().Snapshot().LastView; got != "settings" {
		t.Fatalf("expected lastView to persist, got %s", got)
	}
}

func TestDispatchActionCommandValidates(t *testing.T) {
	if err := NewDispatchActionCommand(nil, nil).Execute(context.Background(), DispatchActionInput{}); err == nil {
		t.Fatalf("expected error without sessions")
	}
	cmd := NewDispatchActionCommand(newTestSessions(t), nil)
	if err := cmd.Execute(context.Background(), DispatchActionInput{UserID: "7"}); err == nil {
		t.Fatalf("expected error for empty element")
	}
}

func TestHashChangeCommandIgnoresUnknownFragment(t *testing.T) {
	sessions := newTestSessions(t)
	cmd := NewHashChangeCommand(sessions, nil)

	var out console.Outcome
	if err := cmd.Execute(context.Background(), HashChangeInput{UserID: "7", Fragment: "#nowhere", Result: &out}); err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if out.Handled {
		t.Fatalf("unknown fragment should not be handled")
	}
	if err := cmd.Execute(context.Background(), HashChangeInput{UserID: "7", Fragment: "#orders", Result: &out}); err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if !out.Handled || out.View.Active != "orders" {
		t.Fatalf("expected orders view, got %+v", out.View)
	}
}

func TestSavePreferenceCommandNormalizes(t *testing.T) {
	sessions := newTestSessions(t)
	cmd := NewSavePreferenceCommand(sessions, nil)

	pref := console.DefaultPreference()
	pref.Theme = console.ThemeDark
	pref.PrimaryColor = "not-a-color"
	pref.LastView = "orders"

	var saved console.Preference
	if err := cmd.Execute(context.Background(), SavePreferenceInput{UserID: "7", Preference: pref, Result: &saved}); err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if saved.Theme != console.ThemeDark {
		t.Fatalf("expected dark theme, got %s", saved.Theme)
	}
	if saved.PrimaryColor != console.DefaultPrimaryColor {
		t.Fatalf("expected invalid color to clamp, got %s", saved.PrimaryColor)
	}
	if got := sessions.Get(context.Background(), "7", "").Charts().Style().Text; got == "" {
		t.Fatalf("expected chart style to be derived")
	}
}

func TestResetPreferenceCommandScopes(t *testing.T) {
	sessions := newTestSessions(t)
	ctx := context.Background()
	cons := sessions.Get(ctx, "7", "")
	cons.Preferences().SetTheme(ctx, console.ThemeDark)
	cons.Preferences().SetLastView(ctx, "orders")
	cons.Preferences().SetChartEnabled(ctx, "sales", false)

	cmd := NewResetPreferenceCommand(sessions, nil)
	if err := cmd.Execute(ctx, ResetPreferenceInput{UserID: "7", Scope: ResetScopeTheme}); err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	pref := cons.Preferences().Snapshot()
	if pref.Theme != console.ThemeLight || pref.LastView != "orders" {
		t.Fatalf("theme reset should keep the view, got %+v", pref)
	}
	if pref.Charts.Enabled["sales"] {
		t.Fatalf("theme reset should not touch charts")
	}

	if err := cmd.Execute(ctx, ResetPreferenceInput{UserID: "7", Scope: ResetScopeCharts}); err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if !cons.Preferences().Snapshot().Charts.Enabled["sales"] {
		t.Fatalf("charts reset should re-enable sales")
	}

	if err := cmd.Execute(ctx, ResetPreferenceInput{UserID: "7"}); err != nil {
		t.Fatalf("execute returned error: %v", err)
	}
	if got := cons.Preferences().Snapshot().LastView; got != console.DefaultView {
		t.Fatalf("full reset should restore the default view, got %s", got)
	}

	if err := cmd.Execute(ctx, ResetPreferenceInput{UserID: "7", Scope: "everything"}); err == nil {
		t.Fatalf("expected error for unknown scope")
	}
}

type stubTelemetry struct {
	calls int
}

func (s *stubTelemetry) Record(context.Context, string, map[string]any) {
	s.calls++
}
