package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/pkg/storage"
)

type prefsCmd struct {
	Show  prefsShowCmd  `cmd:"" help:"Print a viewer's stored preference."`
	Reset prefsResetCmd `cmd:"" help:"Restore defaults for a viewer."`
	Set   prefsSetCmd   `cmd:"" help:"Change individual preference fields."`
}

type PrefsTarget struct {
	User    string `short:"u" help:"Viewer id. Empty selects the shared key."`
	Storage string `help:"Storage driver (overrides config)."`
	DSN     string `help:"Storage DSN (overrides config)."`
}

// open loads the viewer's preference store from the configured storage.
func (t PrefsTarget) open(ctx context.Context, globals *Globals) (*console.PreferenceStore, storage.Store, error) {
	cfg, err := loadConfig(globals.Config)
	if err != nil {
		return nil, nil, err
	}
	if t.Storage != "" {
		cfg.Storage.Driver = t.Storage
	}
	if t.DSN != "" {
		cfg.Storage.DSN = t.DSN
	}
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("consolectl: open storage: %w", err)
	}
	key := console.StorageKey
	if strings.TrimSpace(t.User) != "" {
		key = console.SessionKey(t.User)
	}
	prefs := console.NewPreferenceStore(console.PreferenceStoreOptions{
		Key:    key,
		UserID: t.User,
		Blobs:  store,
		Logger: newLogger(globals),
	})
	prefs.Load(ctx)
	return prefs, store, nil
}

type prefsShowCmd struct {
	PrefsTarget
	Format string `short:"f" default:"yaml" enum:"yaml,json,table" help:"Output format."`
}

func (cmd *prefsShowCmd) Run(ctx context.Context, globals *Globals) error {
	prefs, store, err := cmd.open(ctx, globals)
	if err != nil {
		return err
	}
	defer store.Close()
	return writePreference(os.Stdout, prefs.Snapshot(), cmd.Format)
}

func writePreference(w io.Writer, pref console.Preference, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pref)
	case "table":
		return writeTable(w, []string{"Field", "Value"}, preferenceRows(pref))
	default:
		// Route through JSON so YAML keys match the stored blob.
		var doc map[string]any
		if err := json.Unmarshal(pref.Marshal(), &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(doc)
	}
}

func preferenceRows(pref console.Preference) [][]string {
	rows := [][]string{
		{"theme", string(pref.Theme)},
		{"primary", pref.PrimaryColor},
		{"sidebarCollapsed", strconv.FormatBool(pref.SidebarCollapsed)},
		{"lastView", pref.LastView},
		{"terminology", pref.Terminology},
		{"charts.order", strings.Join(pref.Charts.Order, ",")},
	}
	for _, id := range pref.Charts.Order {
		rows = append(rows,
			[]string{"charts.enabled." + id, strconv.FormatBool(pref.Charts.Enabled[id])},
			[]string{"charts.metric." + id, pref.Charts.Metric[id]},
		)
	}
	return rows
}

type prefsResetCmd struct {
	PrefsTarget
	Scope string `default:"all" enum:"all,theme,charts" help:"What to reset."`
}

func (cmd *prefsResetCmd) Run(ctx context.Context, globals *Globals) error {
	prefs, store, err := cmd.open(ctx, globals)
	if err != nil {
		return err
	}
	defer store.Close()
	var pref console.Preference
	switch cmd.Scope {
	case "theme":
		pref = prefs.ResetTheme(ctx)
	case "charts":
		pref = prefs.ResetCharts(ctx)
	default:
		pref = prefs.Replace(ctx, prefs.Schema().DefaultPreference())
	}
	if err := prefs.LastError(); err != nil {
		return fmt.Errorf("consolectl: save preference: %w", err)
	}
	return writePreference(os.Stdout, pref, "table")
}

type prefsSetCmd struct {
	PrefsTarget
	Theme       string            `help:"Color mode: light or dark."`
	Primary     string            `help:"Primary color (#rrggbb)."`
	View        string            `help:"Last view."`
	Terminology string            `help:"Terminology mode."`
	Collapse    bool              `help:"Collapse the sidebar."`
	Expand      bool              `help:"Expand the sidebar."`
	Enable      map[string]bool   `help:"Chart visibility, e.g. --enable sales=false."`
	Metric      map[string]string `help:"Chart metric, e.g. --metric sales=orders."`
}

func (cmd *prefsSetCmd) Run(ctx context.Context, globals *Globals) error {
	if err := cmd.validate(); err != nil {
		return err
	}
	prefs, store, err := cmd.open(ctx, globals)
	if err != nil {
		return err
	}
	defer store.Close()
	pref := prefs.Update(ctx, cmd.applyTo)
	if err := prefs.LastError(); err != nil {
		return fmt.Errorf("consolectl: save preference: %w", err)
	}
	return writePreference(os.Stdout, pref, "table")
}

func (cmd *prefsSetCmd) validate() error {
	switch console.Theme(cmd.Theme) {
	case "", console.ThemeLight, console.ThemeDark:
	default:
		return fmt.Errorf("consolectl: theme must be light or dark, got %q", cmd.Theme)
	}
	if cmd.Collapse && cmd.Expand {
		return fmt.Errorf("consolectl: --collapse and --expand are exclusive")
	}
	return nil
}

// applyTo copies the set flags into p and reports whether anything changed.
// Invalid values are corrected by the store's normalization.
func (cmd *prefsSetCmd) applyTo(p *console.Preference) bool {
	changed := false
	if cmd.Theme != "" {
		p.Theme = console.Theme(cmd.Theme)
		changed = true
	}
	if cmd.Primary != "" {
		p.PrimaryColor = cmd.Primary
		changed = true
	}
	if cmd.View != "" {
		p.LastView = cmd.View
		changed = true
	}
	if cmd.Terminology != "" {
		p.Terminology = cmd.Terminology
		changed = true
	}
	if cmd.Collapse || cmd.Expand {
		p.SidebarCollapsed = cmd.Collapse
		changed = true
	}
	for id, enabled := range cmd.Enable {
		if _, ok := p.Charts.Enabled[id]; ok {
			p.Charts.Enabled[id] = enabled
			changed = true
		}
	}
	for id, metric := range cmd.Metric {
		if _, ok := p.Charts.Metric[id]; ok {
			p.Charts.Metric[id] = metric
			changed = true
		}
	}
	return changed
}
