package console

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-admin-console/pkg/activity"
)

// Backend is the full admin backend surface. *backend.Client satisfies it.
type Backend interface {
	StatsClient
	GridClient
	ChartClient
	Writer
	PreferenceMirror
}

// Options configures a Console.
type Options struct {
	UserID string
	// Interface is the admin variant being served (modern or classic).
	Interface string
	ThemeName string
	Schema    *Schema
	Blobs     BlobStore
	Backend   Backend
	// ChartSource overrides chart data. When nil, charts read from Backend if
	// RemoteCharts is set and from generated samples otherwise.
	ChartSource  DataSource
	RemoteCharts bool
	ChartCache   RenderCache
	AssetsHost   string
	Translator   TranslationService
	ToastDismiss time.Duration
	HelpTopics   map[string]string
	PageSize     int
	Activity     *activity.Emitter
	Publisher    ToastPublisher
	Logger       Logger
	Telemetry    Telemetry
	// RandomColor overrides the palette picker.
	RandomColor func() string
}

// Console is the application root for one viewer. It owns the preference and
// hands it to every component by reference; actions are applied one at a time.
type Console struct {
	mu         sync.Mutex
	opts       Options
	prefs      *PreferenceStore
	router     *ViewRouter
	charts     *ChartManager
	grid       *GridFetcher
	term       *Terminology
	notifier   *Notifier
	dispatcher *Dispatcher
	stats      Stats
	booted     bool
}

// Snapshot is the full renderable state of a console.
type Snapshot struct {
	UserID     string          `json:"user_id"`
	View       ViewState       `json:"view"`
	Preference Preference      `json:"preference"`
	Theme      ThemeSelection  `json:"theme"`
	Labels     Labels          `json:"labels"`
	Layout     []string        `json:"layout"`
	Charts     []ChartInstance `json:"charts"`
	KPIs       []KPI           `json:"kpis"`
	Grid       *GridRender     `json:"grid,omitempty"`
}

// New wires the components. Nothing is loaded until Boot.
func New(opts Options) *Console {
	opts.Logger = normalizeLogger(opts.Logger)
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if _, ok := InterfacePaths[opts.Interface]; !ok {
		opts.Interface = InterfaceModern
	}
	opts.ThemeName = ResolveThemeName(opts.Interface, opts.ThemeName)
	if opts.RandomColor == nil {
		opts.RandomColor = RandomColor
	}
	schema := DefaultSchema()
	if opts.Schema != nil {
		schema = *opts.Schema
	}

	key := StorageKey
	if opts.UserID != "" {
		key = SessionKey(opts.UserID)
	}
	var mirror PreferenceMirror
	var grids GridClient
	var writer Writer
	if opts.Backend != nil {
		mirror, grids, writer = opts.Backend, opts.Backend, opts.Backend
	}

	source := opts.ChartSource
	if source == nil {
		if opts.RemoteCharts && opts.Backend != nil {
			source = NewRemoteSource(opts.Backend)
		} else {
			source = NewSampleSource(uint64(time.Now().UnixNano()))
		}
	}

	c := &Console{opts: opts}
	c.term = NewTerminology(opts.Translator)
	c.prefs = NewPreferenceStore(PreferenceStoreOptions{
		Key:       key,
		UserID:    opts.UserID,
		Blobs:     opts.Blobs,
		Mirror:    mirror,
		Schema:    &schema,
		Activity:  opts.Activity,
		Logger:    opts.Logger,
		Telemetry: opts.Telemetry,
	})
	c.grid = NewGridFetcher(GridFetcherOptions{
		Client:    grids,
		PageSize:  opts.PageSize,
		Logger:    opts.Logger,
		Telemetry: opts.Telemetry,
	})
	c.router = NewViewRouter(RouterOptions{
		Views:       schema.Views,
		Terminology: c.term,
		OnDataView: func(ctx context.Context, view string) {
			c.grid.Fetch(ctx, view)
		},
	})
	c.charts = NewChartManager(ChartManagerOptions{
		Source:     source,
		Cache:      opts.ChartCache,
		AssetsHost: opts.AssetsHost,
		Logger:     opts.Logger,
		Telemetry:  opts.Telemetry,
	})
	c.notifier = NewNotifier(opts.ToastDismiss)
	c.dispatcher = &Dispatcher{
		prefs:     c.prefs,
		router:    c.router,
		charts:    c.charts,
		grid:      c.grid,
		term:      c.term,
		notifier:  c.notifier,
		forms:     NewFormValidator(),
		help:      NewHelpPanel(opts.HelpTopics),
		writer:    writer,
		activity:  opts.Activity,
		logger:    opts.Logger,
		iface:     opts.Interface,
		themeName: opts.ThemeName,
		userID:    opts.UserID,
		pickColor: opts.RandomColor,
	}
	return c
}

// Boot loads the stored preference, resolves the initial view (an explicit
// fragment wins over the stored one), applies terminology and theme, and
// renders the charts.
func (c *Console) Boot(ctx context.Context, fragment string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bootLocked(ctx, fragment)
	return c.snapshotLocked(ctx)
}

// EnsureBooted boots the console unless that already happened.
func (c *Console) EnsureBooted(ctx context.Context, fragment string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.booted {
		c.bootLocked(ctx, fragment)
	}
	return c.snapshotLocked(ctx)
}

func (c *Console) bootLocked(ctx context.Context, fragment string) {
	pref := c.prefs.Load(ctx)
	c.router.SetTerminology(ctx, pref.Terminology)
	view := c.router.Resolve(fragment, pref.LastView)
	if view != pref.LastView {
		pref = c.prefs.adoptLastView(view)
	}
	c.router.Show(ctx, view)
	c.router.SetHash(view)
	c.charts.Restyle(pref.Theme, pref.PrimaryColor)
	c.charts.Sync(ctx, pref)
	var stats StatsClient
	if c.opts.Backend != nil {
		stats = c.opts.Backend
	}
	c.stats = LoadStats(ctx, stats, c.opts.Logger)
	c.booted = true
	c.opts.Logger.Debug("console booted", "user", c.opts.UserID, "view", view)
}

// Booted reports whether Boot has run.
func (c *Console) Booted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.booted
}

// Dispatch applies one action and publishes the resulting toasts.
func (c *Console) Dispatch(ctx context.Context, action Action) Outcome {
	c.mu.Lock()
	out := c.dispatcher.Dispatch(ctx, action)
	c.mu.Unlock()
	if action != nil {
		c.opts.Telemetry.Record(ctx, "console.action", map[string]any{
			"action":  out.Action,
			"handled": out.Handled,
			"user":    c.opts.UserID,
		})
	}
	c.publish(ctx, out.Toasts)
	return out
}

// Handle parses el and dispatches the resulting action. Elements that map to
// no action yield an empty, unhandled outcome.
func (c *Console) Handle(ctx context.Context, el Element) Outcome {
	return c.Dispatch(ctx, ParseAction(el))
}

// HashChanged reacts to a location change coming from the browser history.
func (c *Console) HashChanged(ctx context.Context, fragment string) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	view, ok := c.router.HashChanged(ctx, fragment)
	if !ok {
		return Outcome{Action: "hashchange"}
	}
	out := Outcome{Action: "hashchange", Handled: true}
	c.dispatcher.withPreference(&out, c.prefs.SetLastView(ctx, view))
	state := c.router.State(ctx)
	out.View = &state
	if grid, ok := c.grid.Last(view); ok {
		out.Grid = &grid
	}
	return out
}

// Snapshot returns the current renderable state.
func (c *Console) Snapshot(ctx context.Context) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(ctx)
}

func (c *Console) snapshotLocked(ctx context.Context) Snapshot {
	pref := c.prefs.Snapshot()
	labels := c.term.Apply(ctx, pref.Terminology)
	labels.Title = c.router.Title()
	snap := Snapshot{
		UserID:     c.opts.UserID,
		View:       c.router.State(ctx),
		Preference: pref,
		Theme:      SelectTheme(c.opts.Interface, c.opts.ThemeName, pref),
		Labels:     labels,
		Layout:     Layout(pref),
		KPIs:       c.stats.KPIs(),
	}
	for _, id := range snap.Layout {
		if inst, ok := c.charts.Get(id); ok {
			snap.Charts = append(snap.Charts, inst)
		}
	}
	if grid, ok := c.grid.Last(snap.View.Active); ok {
		snap.Grid = &grid
	}
	return snap
}

// ApplyPreference replaces the whole preference and re-derives everything
// that depends on it: terminology, chart styling and the chart set.
func (c *Console) ApplyPreference(ctx context.Context, pref Preference) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	saved := c.prefs.Replace(ctx, pref)
	c.router.SetTerminology(ctx, saved.Terminology)
	c.charts.Restyle(saved.Theme, saved.PrimaryColor)
	c.charts.Sync(ctx, saved)
	return c.snapshotLocked(ctx)
}

// RefreshStats refetches the KPI values.
func (c *Console) RefreshStats(ctx context.Context) Stats {
	var client StatsClient
	if c.opts.Backend != nil {
		client = c.opts.Backend
	}
	stats := LoadStats(ctx, client, c.opts.Logger)
	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()
	return stats
}

// RenderChart returns the chart HTML for id.
func (c *Console) RenderChart(id string) (string, error) {
	return c.charts.Render(id)
}

// Preferences exposes the preference store.
func (c *Console) Preferences() *PreferenceStore { return c.prefs }

// Router exposes the view router.
func (c *Console) Router() *ViewRouter { return c.router }

// Charts exposes the chart registry.
func (c *Console) Charts() *ChartManager { return c.charts }

// Grid exposes the grid fetcher.
func (c *Console) Grid() *GridFetcher { return c.grid }

// Notifier exposes the toast builder.
func (c *Console) Notifier() *Notifier { return c.notifier }

// Close disposes the charts and waits for pending preference mirrors.
func (c *Console) Close() {
	c.charts.DisposeAll()
	c.prefs.Wait()
}

func (c *Console) publish(ctx context.Context, toasts []Toast) {
	if c.opts.Publisher == nil {
		return
	}
	for _, toast := range toasts {
		if err := c.opts.Publisher.PublishToast(ctx, c.opts.UserID, toast); err != nil {
			c.opts.Logger.Debug("toast not published", "error", err)
		}
	}
}
