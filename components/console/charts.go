package console

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
)

// ChartKind selects the go-echarts series type used for a chart.
type ChartKind string

const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
)

// DefaultChartKinds maps the stock charts to their series type.
var DefaultChartKinds = map[string]ChartKind{
	"sales":   ChartLine,
	"funnel":  ChartBar,
	"traffic": ChartLine,
}

// ChartStyle is the theme-derived styling of a chart.
type ChartStyle struct {
	Border string `json:"border"`
	Fill   string `json:"fill"`
	Grid   string `json:"grid"`
	Text   string `json:"text"`
}

// StyleFor derives the chart style from the theme and primary color.
func StyleFor(theme Theme, color string) ChartStyle {
	color = ClampHex(color)
	style := ChartStyle{
		Border: color,
		Fill:   HexToRGBA(color, 0.1),
		Grid:   "rgba(0, 0, 0, 0.05)",
		Text:   "#55627a",
	}
	if theme == ThemeDark {
		style.Grid = "rgba(255, 255, 255, 0.1)"
		style.Text = "#a8b3c7"
	}
	return style
}

// HexToRGBA converts #rrggbb into an rgba() string. Invalid input uses the
// default primary color.
func HexToRGBA(color string, alpha float64) string {
	color = ClampHex(color)
	r, _ := strconv.ParseUint(color[1:3], 16, 8)
	g, _ := strconv.ParseUint(color[3:5], 16, 8)
	b, _ := strconv.ParseUint(color[5:7], 16, 8)
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(alpha, 'f', -1, 64))
}

// ChartMeta renders the caption shown under a chart.
func ChartMeta(metric string, period int) string {
	return fmt.Sprintf("%s · %d jours", MetricLabel(metric), period)
}

// ChartInstance is a live chart. Revision increases on every in-place update.
type ChartInstance struct {
	ID       string     `json:"id"`
	Kind     ChartKind  `json:"kind"`
	Metric   string     `json:"metric"`
	Period   int        `json:"period"`
	Series   Series     `json:"series"`
	Style    ChartStyle `json:"style"`
	Meta     string     `json:"meta"`
	Revision int        `json:"revision"`
	// Degraded is set when the data source failed and Series is the zero fallback.
	Degraded bool `json:"degraded"`
}

func (c *ChartInstance) clone() ChartInstance {
	out := *c
	out.Series.Labels = slices.Clone(c.Series.Labels)
	out.Series.Values = slices.Clone(c.Series.Values)
	return out
}

// ChartManagerOptions configures a ChartManager.
type ChartManagerOptions struct {
	Source     DataSource
	Kinds      map[string]ChartKind
	Theme      Theme
	Color      string
	Cache      RenderCache
	AssetsHost string
	Logger     Logger
	Telemetry  Telemetry
}

// ChartManager is a key-addressed registry of chart instances. Instances are
// created once and updated in place afterwards.
type ChartManager struct {
	mu        sync.Mutex
	source    DataSource
	kinds     map[string]ChartKind
	style     ChartStyle
	theme     Theme
	cache     RenderCache
	assets    string
	logger    Logger
	telemetry Telemetry
	instances map[string]*ChartInstance
	periods   map[string]int
}

// NewChartManager builds a manager. A nil source falls back to sample data.
func NewChartManager(opts ChartManagerOptions) *ChartManager {
	source := opts.Source
	if source == nil {
		source = NewSampleSource(1)
	}
	kinds := opts.Kinds
	if kinds == nil {
		kinds = DefaultChartKinds
	}
	theme := opts.Theme
	if theme == "" {
		theme = ThemeLight
	}
	return &ChartManager{
		source:    source,
		kinds:     maps.Clone(kinds),
		style:     StyleFor(theme, opts.Color),
		theme:     theme,
		cache:     opts.Cache,
		assets:    opts.AssetsHost,
		logger:    normalizeLogger(opts.Logger),
		telemetry: normalizeTelemetry(opts.Telemetry),
		instances: make(map[string]*ChartInstance),
		periods:   make(map[string]int),
	}
}

// CreateOrUpdate fetches the series for id and creates the instance or mutates
// the existing one in place. A failed fetch degrades to a zero-filled series of
// the same shape; the previous data is never left on screen.
func (m *ChartManager) CreateOrUpdate(ctx context.Context, id, metric string, period int) ChartInstance {
	if period <= 0 {
		period = DefaultPeriod
	}
	result := m.source.ChartSeries(ctx, id, metric, period)
	series, degraded := result.Value, false
	if !result.IsOk() {
		m.logger.Warn("chart data unavailable, using empty series", "chart", id, "metric", metric, "error", result.Err)
		series, degraded = ZeroSeries(metric, period), true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods[id] = period
	inst, ok := m.instances[id]
	if !ok {
		inst = &ChartInstance{ID: id, Kind: m.kindFor(id)}
		m.instances[id] = inst
	} else {
		inst.Revision++
	}
	inst.Metric = metric
	inst.Period = period
	inst.Series = series
	inst.Style = m.style
	inst.Meta = ChartMeta(metric, period)
	inst.Degraded = degraded
	m.telemetry.Record(ctx, "console.chart.update", map[string]any{
		"chart":    id,
		"metric":   metric,
		"period":   period,
		"revision": inst.Revision,
		"degraded": degraded,
	})
	return inst.clone()
}

// Restyle applies a new theme and color to every live instance without refetching.
func (m *ChartManager) Restyle(theme Theme, color string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.theme = theme
	m.style = StyleFor(theme, color)
	ids := make([]string, 0, len(m.instances))
	for id, inst := range m.instances {
		inst.Style = m.style
		inst.Revision++
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Style returns the current chart style.
func (m *ChartManager) Style() ChartStyle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.style
}

// Period returns the selected period for id.
func (m *ChartManager) Period(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if period, ok := m.periods[id]; ok {
		return period
	}
	return DefaultPeriod
}

// Get returns a copy of the live instance.
func (m *ChartManager) Get(id string) (ChartInstance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[id]
	if !ok {
		return ChartInstance{}, false
	}
	return inst.clone(), true
}

// Live lists live chart ids in sorted order.
func (m *ChartManager) Live() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.instances))
}

// Sync brings the registry in line with the preference: enabled charts are
// created or updated in preference order, disabled ones are disposed.
func (m *ChartManager) Sync(ctx context.Context, pref Preference) []ChartInstance {
	out := make([]ChartInstance, 0, len(pref.Charts.Order))
	for _, id := range pref.Charts.Order {
		if !pref.Charts.Enabled[id] {
			m.Dispose(id)
			continue
		}
		out = append(out, m.CreateOrUpdate(ctx, id, pref.Charts.Metric[id], m.Period(id)))
	}
	return out
}

// Layout lists the visible charts in preference order.
func Layout(pref Preference) []string {
	out := make([]string, 0, len(pref.Charts.Order))
	for _, id := range pref.Charts.Order {
		if pref.Charts.Enabled[id] {
			out = append(out, id)
		}
	}
	return out
}

// Dispose tears down one instance.
func (m *ChartManager) Dispose(id string) bool {
	m.mu.Lock()
	_, ok := m.instances[id]
	delete(m.instances, id)
	m.mu.Unlock()
	if ok && m.cache != nil {
		m.cache.Evict(id)
	}
	return ok
}

// DisposeAll tears down every instance.
func (m *ChartManager) DisposeAll() {
	for _, id := range m.Live() {
		m.Dispose(id)
	}
}

func (m *ChartManager) kindFor(id string) ChartKind {
	if kind, ok := m.kinds[id]; ok {
		return kind
	}
	return ChartLine
}
