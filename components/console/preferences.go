package console

import (
	"encoding/json"
	"regexp"
	"slices"
	"strings"
)

const (
	// StorageKey names the persisted preference blob.
	StorageKey = "admin_console_theme_v1"

	DefaultPrimaryColor = "#4f46e5"
	DefaultView         = "dashboard"
	DefaultTerminology  = "standard"
)

// Theme is the color mode.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ChartPreferences stores chart layout and metric selections.
type ChartPreferences struct {
	Order   []string          `json:"order"`
	Enabled map[string]bool   `json:"enabled"`
	Metric  map[string]string `json:"metric"`
}

// Preference is the persisted, user-configurable console state.
type Preference struct {
	Theme            Theme            `json:"theme"`
	PrimaryColor     string           `json:"primary"`
	SidebarCollapsed bool             `json:"sidebarCollapsed"`
	LastView         string           `json:"lastView"`
	Terminology      string           `json:"terminology"`
	Charts           ChartPreferences `json:"charts"`
}

// Schema lists the values a Preference is validated against.
type Schema struct {
	Views        []string
	Charts       []string
	ChartMetrics map[string]string
}

// DefaultSchema returns the stock view and chart sets.
func DefaultSchema() Schema {
	return Schema{
		Views:  slices.Clone(DefaultViews),
		Charts: slices.Clone(DefaultChartOrder),
		ChartMetrics: map[string]string{
			"sales":   "revenue",
			"funnel":  "conversion",
			"traffic": "visitors",
		},
	}
}

// DefaultViews is the stock set of navigable views.
var DefaultViews = []string{"dashboard", "orders", "products", "customers", "users", "settings"}

// DefaultChartOrder is the canonical chart order.
var DefaultChartOrder = []string{"sales", "funnel", "traffic"}

// LoadPreference parses a persisted blob against the default schema.
func LoadPreference(raw []byte) Preference {
	return DefaultSchema().Load(raw)
}

// DefaultPreference returns the stock defaults.
func DefaultPreference() Preference {
	return DefaultSchema().DefaultPreference()
}

// DefaultPreference returns the preference used when nothing valid is stored.
func (s Schema) DefaultPreference() Preference {
	return s.Load(nil)
}

// Load parses raw permissively and validates every field on its own, so a blob
// that is corrupt in one field still keeps the valid values of the others. It
// never fails: unreadable input yields the defaults.
func (s Schema) Load(raw []byte) Preference {
	var stored map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &stored); err != nil {
			stored = nil
		}
	}
	charts, _ := stored["charts"].(map[string]any)
	pref := Preference{
		Theme:            ThemeLight,
		PrimaryColor:     ClampHex(stringField(stored, "primary")),
		SidebarCollapsed: truthy(stored["sidebarCollapsed"]),
		LastView:         DefaultView,
		Terminology:      DefaultTerminology,
		Charts:           s.loadCharts(charts),
	}
	if theme, _ := stored["theme"].(string); theme == string(ThemeDark) {
		pref.Theme = ThemeDark
	}
	if view, ok := stored["lastView"].(string); ok && slices.Contains(s.Views, view) {
		pref.LastView = view
	}
	if term, ok := stored["terminology"].(string); ok && strings.TrimSpace(term) != "" {
		pref.Terminology = strings.TrimSpace(term)
	}
	return pref
}

func (s Schema) loadCharts(stored map[string]any) ChartPreferences {
	out := ChartPreferences{
		Enabled: make(map[string]bool, len(s.Charts)),
		Metric:  make(map[string]string, len(s.Charts)),
	}
	if rawOrder, ok := stored["order"].([]any); ok {
		for _, item := range rawOrder {
			id, ok := item.(string)
			if !ok || !slices.Contains(s.Charts, id) || slices.Contains(out.Order, id) {
				continue
			}
			out.Order = append(out.Order, id)
		}
	}
	if len(out.Order) == 0 {
		out.Order = slices.Clone(s.Charts)
	}
	enabled, _ := stored["enabled"].(map[string]any)
	metrics, _ := stored["metric"].(map[string]any)
	for _, id := range s.Charts {
		flag, isBool := enabled[id].(bool)
		out.Enabled[id] = !isBool || flag
		if metric, ok := metrics[id].(string); ok && strings.TrimSpace(metric) != "" {
			out.Metric[id] = strings.TrimSpace(metric)
		} else {
			out.Metric[id] = s.ChartMetrics[id]
		}
	}
	return out
}

// Normalize re-validates an in-memory preference against the schema.
func (s Schema) Normalize(pref Preference) Preference {
	data, err := json.Marshal(pref)
	if err != nil {
		return s.DefaultPreference()
	}
	return s.Load(data)
}

// Marshal serializes the preference. Map keys are emitted sorted, so the output
// of a normalized preference is stable across load/save cycles.
func (p Preference) Marshal() []byte {
	data, err := json.Marshal(p)
	if err != nil {
		return []byte("{}")
	}
	return data
}

// Clone returns a deep copy.
func (p Preference) Clone() Preference {
	out := p
	out.Charts.Order = slices.Clone(p.Charts.Order)
	out.Charts.Enabled = make(map[string]bool, len(p.Charts.Enabled))
	for k, v := range p.Charts.Enabled {
		out.Charts.Enabled[k] = v
	}
	out.Charts.Metric = make(map[string]string, len(p.Charts.Metric))
	for k, v := range p.Charts.Metric {
		out.Charts.Metric[k] = v
	}
	return out
}

// MoveChart swaps the chart with its neighbour. delta is -1 (up) or +1 (down).
// Moving past either end is a no-op and reports false.
func (p *Preference) MoveChart(id string, delta int) bool {
	i := slices.Index(p.Charts.Order, id)
	if i < 0 {
		return false
	}
	j := i + delta
	if j < 0 || j >= len(p.Charts.Order) {
		return false
	}
	order := slices.Clone(p.Charts.Order)
	order[i], order[j] = order[j], order[i]
	p.Charts.Order = order
	return true
}

// ClampHex returns color when it is a 6-digit hex color, else the default.
func ClampHex(color string) string {
	color = strings.TrimSpace(color)
	if hexColor.MatchString(color) {
		return color
	}
	return DefaultPrimaryColor
}

func stringField(m map[string]any, key string) string {
	value, _ := m[key].(string)
	return value
}

func truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case float64:
		return value != 0
	case string:
		return value != ""
	default:
		return true
	}
}
