package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-users/pkg/types"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/pkg/activity"
	"github.com/goliatone/go-admin-console/pkg/activity/usersink"
	"github.com/goliatone/go-admin-console/pkg/analytics"
	"github.com/goliatone/go-admin-console/pkg/backend"
	"github.com/goliatone/go-admin-console/pkg/storage"
)

var logLevels = map[string]console.LogLevel{
	"debug": console.LogLevelDebug,
	"info":  console.LogLevelInfo,
	"warn":  console.LogLevelWarn,
	"error": console.LogLevelError,
}

func newLogger(globals *Globals) console.Logger {
	return buildLogger(os.Stderr, globals.LogLevel, globals.LogFormat)
}

func buildLogger(w io.Writer, level, format string) console.Logger {
	lvl, ok := logLevels[strings.ToLower(level)]
	if !ok {
		lvl = console.LogLevelInfo
	}
	if format == "slog" {
		return console.NewLogger(w, lvl)
	}
	return console.NewZapLogger(w, lvl)
}

// logActivitySink records go-users activity records in the log.
type logActivitySink struct {
	logger console.Logger
}

func (s logActivitySink) Log(_ context.Context, record types.ActivityRecord) error {
	s.logger.Info("activity",
		"verb", record.Verb,
		"object_type", record.ObjectType,
		"object_id", record.ObjectID,
		"channel", record.Channel,
		"actor", record.ActorID.String(),
	)
	return nil
}

// runtime holds the shared dependencies of every viewer console.
type runtime struct {
	cfg         fileConfig
	logger      console.Logger
	store       storage.Store
	backend     *backend.Client
	charts      console.DataSource
	activity    *activity.Emitter
	broadcaster *console.Broadcaster
	chartTTL    time.Duration
	idleTTL     time.Duration
}

func newRuntime(ctx context.Context, cfg fileConfig, logger console.Logger) (*runtime, error) {
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("consolectl: open storage: %w", err)
	}
	rt := &runtime{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		broadcaster: console.NewBroadcaster(),
		activity: activity.NewEmitter(
			activity.Hooks{usersink.Hook{Sink: logActivitySink{logger: logger}}},
			cfg.Activity,
		),
	}
	if cfg.Charts.CacheTTL != "" {
		ttl, err := time.ParseDuration(cfg.Charts.CacheTTL)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("consolectl: charts.cache_ttl: %w", err)
		}
		rt.chartTTL = ttl
	}
	if cfg.Sessions.IdleTTL != "" {
		ttl, err := time.ParseDuration(cfg.Sessions.IdleTTL)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("consolectl: sessions.idle_ttl: %w", err)
		}
		rt.idleTTL = ttl
	}
	if strings.TrimSpace(cfg.Backend.URL) != "" {
		client, err := backend.New(backend.Config{
			BaseURL:    cfg.Backend.URL,
			CSRFCookie: cfg.Backend.CSRFCookie,
			CSRFHeader: cfg.Backend.CSRFHeader,
			CSRFToken:  cfg.Backend.CSRFToken,
		})
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("consolectl: backend: %w", err)
		}
		rt.backend = client
	}
	if strings.TrimSpace(cfg.Charts.Analytics.URL) != "" {
		client, err := analytics.NewHTTPClient(analytics.HTTPConfig{
			BaseURL: cfg.Charts.Analytics.URL,
			APIKey:  cfg.Charts.Analytics.APIKey,
			Segment: cfg.Charts.Analytics.Segment,
		})
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("consolectl: charts.analytics: %w", err)
		}
		rt.charts = analytics.NewSource(client)
	}
	return rt, nil
}

// options builds the console options for one viewer.
func (rt *runtime) options(userID string) console.Options {
	opts := console.Options{
		UserID:       userID,
		Interface:    rt.cfg.Interface,
		ThemeName:    rt.cfg.Theme,
		Blobs:        rt.store,
		RemoteCharts: rt.cfg.Charts.Remote,
		AssetsHost:   rt.cfg.Charts.AssetsHost,
		PageSize:     rt.cfg.PageSize,
		Activity:     rt.activity,
		Publisher:    rt.broadcaster,
		Logger:       rt.logger,
	}
	if rt.chartTTL > 0 {
		opts.ChartCache = console.NewChartCache(rt.chartTTL)
	}
	if rt.backend != nil {
		opts.Backend = rt.backend
	}
	if rt.charts != nil {
		opts.ChartSource = rt.charts
	}
	return opts
}

func (rt *runtime) sessions() *console.Sessions {
	return console.NewSessions(rt.options,
		console.WithMaxSessions(rt.cfg.Sessions.Max),
		console.WithIdleTimeout(rt.idleTTL),
	)
}

func (rt *runtime) Close() error {
	return rt.store.Close()
}
