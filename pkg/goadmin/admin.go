package goadmin

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-admin-console/components/console"
	activitypkg "github.com/goliatone/go-admin-console/pkg/activity"
)

// MenuBuilder ensures console entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures console link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the console sessions + feature flags into an admin shell.
type Config struct {
	EnableConsole bool
	MenuCode      string
	MenuBuilder   MenuBuilder
	Sessions      *console.Sessions
	// BasePath is where the console page is mounted. Defaults to /admin/console.
	BasePath string
	// Terminology selects the label profile used for menu entries.
	Terminology    string
	Views          []string
	Icons          map[string]string
	ActivityHooks  activitypkg.Hooks
	ActivityConfig activitypkg.Config
}

var defaultIcons = map[string]string{
	"dashboard": "home",
	"orders":    "shopping-cart",
	"products":  "package",
	"customers": "users",
	"users":     "user",
	"settings":  "settings",
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg      Config
	activity *activitypkg.Emitter
}

// New creates an Admin helper that can seed console menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableConsole && cfg.Sessions == nil {
		return nil, errors.New("goadmin: console sessions are required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/admin/console"
	}
	cfg.BasePath = strings.TrimRight(cfg.BasePath, "/")
	if cfg.Terminology == "" {
		cfg.Terminology = console.DefaultTerminology
	}
	if len(cfg.Views) == 0 {
		cfg.Views = console.DefaultViews
	}
	return &Admin{
		cfg:      cfg,
		activity: activitypkg.NewEmitter(cfg.ActivityHooks, cfg.ActivityConfig),
	}, nil
}

// Sessions exposes the configured console registry when enabled.
func (a *Admin) Sessions() *console.Sessions {
	if !a.cfg.EnableConsole {
		return nil
	}
	return a.cfg.Sessions
}

// Activity returns the emitter built from the configured hooks. Hosts pass it
// to console.Options so preference saves reach the admin audit trail.
func (a *Admin) Activity() *activitypkg.Emitter {
	return a.activity
}

// MenuItems lists one entry per console view, labeled with the configured
// terminology and routed to the view fragment.
func (a *Admin) MenuItems() []MenuItem {
	labels := console.Dictionary(a.cfg.Terminology)
	items := make([]MenuItem, 0, len(a.cfg.Views))
	for i, view := range a.cfg.Views {
		label := labels["nav."+view]
		if label == "" {
			label = view
		}
		icon := a.cfg.Icons[view]
		if icon == "" {
			icon = defaultIcons[view]
		}
		items = append(items, MenuItem{
			Label:    label,
			Route:    a.cfg.BasePath + "#" + view,
			Icon:     icon,
			Position: i,
		})
	}
	return items
}

// Bootstrap seeds menu entries when console support is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableConsole || a.cfg.MenuBuilder == nil {
		return nil
	}
	for _, item := range a.MenuItems() {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			return err
		}
	}
	return a.activity.Emit(ctx, activitypkg.Event{
		Verb:       "seed",
		ObjectType: "menu",
		ObjectID:   a.cfg.MenuCode,
		Metadata:   map[string]any{"items": len(a.cfg.Views)},
	})
}
