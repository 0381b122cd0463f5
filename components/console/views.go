package console

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// DefaultDataViews are the views backed by a grid.
var DefaultDataViews = []string{"orders", "products", "customers", "users"}

const fallbackTitle = "Dashboard"

// ViewTrigger runs when a data-bearing view becomes active.
type ViewTrigger func(ctx context.Context, view string)

// RouterOptions configures a ViewRouter.
type RouterOptions struct {
	Views       []string
	DataViews   []string
	Terminology *Terminology
	Mode        string
	OnDataView  ViewTrigger
}

// NavEntry is one navigation item.
type NavEntry struct {
	View   string `json:"view"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// ViewState is the router output: what is visible and how it is titled.
type ViewState struct {
	Active   string     `json:"active"`
	Title    string     `json:"title"`
	Fragment string     `json:"fragment"`
	Nav      []NavEntry `json:"nav"`
}

// ViewRouter keeps the active view and the location fragment in sync.
type ViewRouter struct {
	mu        sync.RWMutex
	views     []string
	dataViews []string
	term      *Terminology
	mode      string
	onData    ViewTrigger
	active    string
	title     string
	fragment  string
	history   []string
}

// NewViewRouter builds a router with no active view.
func NewViewRouter(opts RouterOptions) *ViewRouter {
	views := opts.Views
	if len(views) == 0 {
		views = DefaultViews
	}
	dataViews := opts.DataViews
	if dataViews == nil {
		dataViews = DefaultDataViews
	}
	mode := opts.Mode
	if mode == "" {
		mode = DefaultTerminology
	}
	return &ViewRouter{
		views:     slices.Clone(views),
		dataViews: slices.Clone(dataViews),
		term:      opts.Terminology,
		mode:      mode,
		onData:    opts.OnDataView,
	}
}

// Views returns the known view names.
func (r *ViewRouter) Views() []string {
	return slices.Clone(r.views)
}

// Known reports whether view is routable.
func (r *ViewRouter) Known(view string) bool {
	return slices.Contains(r.views, view)
}

// IsDataView reports whether view is backed by a grid.
func (r *ViewRouter) IsDataView(view string) bool {
	return slices.Contains(r.dataViews, view)
}

// Active returns the active view.
func (r *ViewRouter) Active() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Show activates view. Unknown views are ignored and leave the current view
// untouched. Data views trigger the grid hook.
func (r *ViewRouter) Show(ctx context.Context, view string) bool {
	if !r.Known(view) {
		return false
	}
	r.mu.Lock()
	r.active = view
	r.title = r.titleFor(ctx, view)
	onData := r.onData
	r.mu.Unlock()
	if onData != nil && r.IsDataView(view) {
		onData(ctx, view)
	}
	return true
}

// Navigate shows view and pushes its fragment.
func (r *ViewRouter) Navigate(ctx context.Context, view string) bool {
	if !r.Show(ctx, view) {
		return false
	}
	r.SetHash(view)
	return true
}

// SetHash pushes #view unless it is unknown or already current.
func (r *ViewRouter) SetHash(view string) bool {
	if !r.Known(view) {
		return false
	}
	fragment := "#" + view
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fragment == fragment {
		return false
	}
	r.fragment = fragment
	r.history = append(r.history, fragment)
	return true
}

// ViewFromFragment extracts a known view from a location fragment.
func (r *ViewRouter) ViewFromFragment(fragment string) (string, bool) {
	view := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(fragment), "#"))
	if !r.Known(view) {
		return "", false
	}
	return view, true
}

// Resolve picks the initial view: a valid fragment wins over the stored view.
func (r *ViewRouter) Resolve(fragment, stored string) string {
	if view, ok := r.ViewFromFragment(fragment); ok {
		return view
	}
	if r.Known(stored) {
		return stored
	}
	return DefaultView
}

// HashChanged reacts to an external fragment change (back/forward). The view is
// shown but the fragment is recorded as-is rather than pushed again.
func (r *ViewRouter) HashChanged(ctx context.Context, fragment string) (string, bool) {
	view, ok := r.ViewFromFragment(fragment)
	if !ok {
		return "", false
	}
	r.mu.Lock()
	r.fragment = "#" + view
	r.mu.Unlock()
	r.Show(ctx, view)
	return view, true
}

// Fragment returns the current location fragment.
func (r *ViewRouter) Fragment() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fragment
}

// History lists fragments pushed by the router.
func (r *ViewRouter) History() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.history)
}

// SetTerminology switches the label profile and re-derives the title.
func (r *ViewRouter) SetTerminology(ctx context.Context, mode string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = mode
	if r.active != "" {
		r.title = r.titleFor(ctx, r.active)
	}
	return r.title
}

// Title returns the derived page title.
func (r *ViewRouter) Title() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.title
}

// State snapshots the router for rendering.
func (r *ViewRouter) State(ctx context.Context) ViewState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	nav := make([]NavEntry, 0, len(r.views))
	for _, view := range r.views {
		label := r.labelFor(ctx, view)
		if label == "" {
			label = view
		}
		nav = append(nav, NavEntry{View: view, Label: label, Active: view == r.active})
	}
	return ViewState{Active: r.active, Title: r.title, Fragment: r.fragment, Nav: nav}
}

// caller holds r.mu.
func (r *ViewRouter) titleFor(ctx context.Context, view string) string {
	label := r.labelFor(ctx, view)
	if label == "" {
		return fallbackTitle
	}
	return label
}

func (r *ViewRouter) labelFor(ctx context.Context, view string) string {
	key := "nav." + view
	label := r.term.Label(ctx, r.mode, key)
	if label == key {
		return ""
	}
	return label
}

// FilterNav returns the nav entries whose label contains query, case-insensitively.
// An empty query keeps every entry.
func FilterNav(nav []NavEntry, query string) []NavEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return slices.Clone(nav)
	}
	out := make([]NavEntry, 0, len(nav))
	for _, entry := range nav {
		if strings.Contains(strings.ToLower(entry.Label), query) {
			out = append(out, entry)
		}
	}
	return out
}
