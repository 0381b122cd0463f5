package console

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-admin-console/pkg/activity"
	"github.com/goliatone/go-admin-console/pkg/storage"
)

// BlobStore persists the serialized preference. pkg/storage backends satisfy it.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// PreferenceMirror receives a best-effort copy of every saved preference.
type PreferenceMirror interface {
	SavePreference(ctx context.Context, payload any) error
}

// MirrorPayload is the body sent to the backend preference endpoint.
type MirrorPayload struct {
	SidebarCollapsed bool       `json:"sidebar_collapsed"`
	Preferences      Preference `json:"preferences"`
}

// PreferenceStoreOptions configures a PreferenceStore.
type PreferenceStoreOptions struct {
	Key       string
	UserID    string
	Blobs     BlobStore
	Mirror    PreferenceMirror
	Schema    *Schema
	Activity  *activity.Emitter
	Logger    Logger
	Telemetry Telemetry
	// MirrorTimeout bounds each background mirror call.
	MirrorTimeout time.Duration
}

// PreferenceStore owns the in-memory Preference for one viewer. Every setter
// mutates the owned value and writes it through synchronously; write failures are
// logged and kept for inspection but never returned to callers.
type PreferenceStore struct {
	mu      sync.Mutex
	opts    PreferenceStoreOptions
	schema  Schema
	pref    Preference
	lastErr error
	mirrors sync.WaitGroup
}

// NewPreferenceStore builds a store holding the default preference until Load runs.
func NewPreferenceStore(opts PreferenceStoreOptions) *PreferenceStore {
	if opts.Key == "" {
		opts.Key = StorageKey
	}
	if opts.Blobs == nil {
		opts.Blobs = storage.NewMemoryStore()
	}
	if opts.MirrorTimeout <= 0 {
		opts.MirrorTimeout = 10 * time.Second
	}
	opts.Logger = normalizeLogger(opts.Logger)
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	schema := DefaultSchema()
	if opts.Schema != nil {
		schema = *opts.Schema
	}
	return &PreferenceStore{opts: opts, schema: schema, pref: schema.DefaultPreference()}
}

// Schema returns the schema preferences are validated against.
func (s *PreferenceStore) Schema() Schema {
	return s.schema
}

// Load reads the persisted blob and replaces the in-memory preference.
// Missing, unreadable or corrupt data yields defaults.
func (s *PreferenceStore) Load(ctx context.Context) Preference {
	raw, err := s.opts.Blobs.Load(ctx, s.opts.Key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.opts.Logger.Warn("preference load failed, using defaults", "key", s.opts.Key, "error", err)
		raw = nil
	}
	pref := s.schema.Load(raw)
	s.mu.Lock()
	s.pref = pref
	s.mu.Unlock()
	return pref.Clone()
}

// Snapshot returns a copy of the current preference.
func (s *PreferenceStore) Snapshot() Preference {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pref.Clone()
}

// adoptLastView records view in memory only; the next write persists it.
func (s *PreferenceStore) adoptLastView(view string) Preference {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pref.LastView = view
	return s.pref.Clone()
}

// Save writes the current preference.
func (s *PreferenceStore) Save(ctx context.Context) {
	s.mu.Lock()
	pref := s.pref.Clone()
	s.mu.Unlock()
	s.persist(ctx, pref)
}

// Update applies fn, re-validates the result and persists it when fn reports a change.
func (s *PreferenceStore) Update(ctx context.Context, fn func(*Preference) bool) Preference {
	s.mu.Lock()
	next := s.pref.Clone()
	changed := fn(&next)
	if changed {
		next = s.schema.Normalize(next)
		s.pref = next
	}
	out := s.pref.Clone()
	s.mu.Unlock()
	if changed {
		s.persist(ctx, out)
	}
	return out
}

// Replace swaps in a whole preference (normalized) and persists it.
func (s *PreferenceStore) Replace(ctx context.Context, pref Preference) Preference {
	return s.Update(ctx, func(p *Preference) bool {
		*p = pref.Clone()
		return true
	})
}

// LastError returns the most recent write failure, if any.
func (s *PreferenceStore) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Wait blocks until in-flight mirror calls finish.
func (s *PreferenceStore) Wait() {
	s.mirrors.Wait()
}

func (s *PreferenceStore) persist(ctx context.Context, pref Preference) {
	err := s.opts.Blobs.Save(ctx, s.opts.Key, pref.Marshal())
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	if err != nil {
		s.opts.Logger.Error("preference save failed", "key", s.opts.Key, "error", err)
		return
	}
	s.opts.Telemetry.Record(ctx, "console.preferences.save", map[string]any{
		"key":         s.opts.Key,
		"theme":       string(pref.Theme),
		"last_view":   pref.LastView,
		"terminology": pref.Terminology,
	})
	if err := s.opts.Activity.Emit(ctx, activity.Event{
		Verb:       "update",
		ActorID:    s.opts.UserID,
		UserID:     s.opts.UserID,
		ObjectType: "preference",
		ObjectID:   s.opts.Key,
		Metadata:   map[string]any{"theme": string(pref.Theme), "last_view": pref.LastView},
	}); err != nil {
		s.opts.Logger.Debug("preference activity not recorded", "error", err)
	}
	s.mirror(ctx, pref)
}

func (s *PreferenceStore) mirror(ctx context.Context, pref Preference) {
	if s.opts.Mirror == nil {
		return
	}
	payload := MirrorPayload{SidebarCollapsed: pref.SidebarCollapsed, Preferences: pref}
	s.mirrors.Add(1)
	go func() {
		defer s.mirrors.Done()
		mirrorCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.MirrorTimeout)
		defer cancel()
		if err := s.opts.Mirror.SavePreference(mirrorCtx, payload); err != nil {
			s.opts.Logger.Debug("preference mirror failed", "error", err)
		}
	}()
}

// Setters. Each persists before returning.

func (s *PreferenceStore) SetTheme(ctx context.Context, theme Theme) Preference {
	return s.Update(ctx, func(p *Preference) bool {
		p.Theme = theme
		return true
	})
}

func (s *PreferenceStore) SetPrimaryColor(ctx context.Context, color string) Preference {
	return s.Update(ctx, func(p *Preference) bool {
		p.PrimaryColor = ClampHex(color)
		return true
	})
}

func (s *PreferenceStore) ToggleSidebar(ctx context.Context) Preference {
	return s.Update(ctx, func(p *Preference) bool {
		p.SidebarCollapsed = !p.SidebarCollapsed
		return true
	})
}

func (s *PreferenceStore) SetLastView(ctx context.Context, view string) Preference {
	return s.Update(ctx, func(p *Preference) bool {
		p.LastView = view
		return true
	})
}

func (s *PreferenceStore) SetTerminology(ctx context.Context, mode string) Preference {
	return s.Update(ctx, func(p *Preference) bool {
		p.Terminology = mode
		return true
	})
}

// MoveChart reports whether the order changed; nothing is written otherwise.
func (s *PreferenceStore) MoveChart(ctx context.Context, id string, delta int) (Preference, bool) {
	var moved bool
	pref := s.Update(ctx, func(p *Preference) bool {
		moved = p.MoveChart(id, delta)
		return moved
	})
	return pref, moved
}

func (s *PreferenceStore) SetChartEnabled(ctx context.Context, id string, enabled bool) Preference {
	return s.Update(ctx, func(p *Preference) bool {
		if _, ok := p.Charts.Enabled[id]; !ok {
			return false
		}
		p.Charts.Enabled[id] = enabled
		return true
	})
}

func (s *PreferenceStore) SetChartMetric(ctx context.Context, id, metric string) Preference {
	return s.Update(ctx, func(p *Preference) bool {
		if _, ok := p.Charts.Metric[id]; !ok {
			return false
		}
		p.Charts.Metric[id] = metric
		return true
	})
}

// ResetCharts restores the default chart layout.
func (s *PreferenceStore) ResetCharts(ctx context.Context) Preference {
	defaults := s.schema.DefaultPreference().Charts
	return s.Update(ctx, func(p *Preference) bool {
		p.Charts = defaults
		return true
	})
}

// ResetTheme restores light mode and the default primary color.
func (s *PreferenceStore) ResetTheme(ctx context.Context) Preference {
	return s.Update(ctx, func(p *Preference) bool {
		p.Theme = ThemeLight
		p.PrimaryColor = DefaultPrimaryColor
		return true
	})
}
