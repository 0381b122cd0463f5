package console

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-admin-console/pkg/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodLabels(t *testing.T) {
	assert.Equal(t, []string{"Lun", "Mar", "Mer", "Jeu", "Ven", "Sam", "Dim"}, PeriodLabels(7))
	assert.Len(t, PeriodLabels(90), 12)
	assert.Equal(t, "S12", PeriodLabels(90)[11])
	labels := PeriodLabels(30)
	require.Len(t, labels, 15)
	assert.Equal(t, "2j", labels[0])
	assert.Equal(t, "30j", labels[14])
	assert.Equal(t, labels, PeriodLabels(0))
}

func TestSampleSourceStaysWithinBounds(t *testing.T) {
	source := NewSampleSource(42)
	for _, metric := range []string{"revenue", "orders", "conversion", "unknown"} {
		lo, hi := MetricBounds(metric)
		result := source.ChartSeries(context.Background(), "sales", metric, 30)
		require.True(t, result.IsOk())
		require.Len(t, result.Value.Values, 15)
		for _, v := range result.Value.Values {
			if v < float64(lo) || v > float64(hi) {
				t.Fatalf("%s value %v outside [%d,%d]", metric, v, lo, hi)
			}
		}
	}
	assert.Equal(t, "Chiffre d’affaires", source.ChartSeries(context.Background(), "sales", "revenue", 7).Value.Label)
}

func TestHexToRGBA(t *testing.T) {
	assert.Equal(t, "rgba(79, 70, 229, 0.1)", HexToRGBA("#4f46e5", 0.1))
	assert.Equal(t, "rgba(255, 0, 0, 0.5)", HexToRGBA("#FF0000", 0.5))
	assert.Equal(t, "rgba(79, 70, 229, 1)", HexToRGBA("nope", 1))
}

func TestStyleForTheme(t *testing.T) {
	light := StyleFor(ThemeLight, "#16a34a")
	assert.Equal(t, "#16a34a", light.Border)
	assert.Equal(t, "rgba(0, 0, 0, 0.05)", light.Grid)
	assert.Equal(t, "#55627a", light.Text)

	dark := StyleFor(ThemeDark, "#16a34a")
	assert.Equal(t, "rgba(255, 255, 255, 0.1)", dark.Grid)
	assert.Equal(t, "#a8b3c7", dark.Text)
}

func TestChartManagerUpdatesInPlace(t *testing.T) {
	manager := NewChartManager(ChartManagerOptions{Source: NewSampleSource(7), Logger: NopLogger()})
	first := manager.CreateOrUpdate(context.Background(), "sales", "revenue", 7)
	assert.Equal(t, 0, first.Revision)
	assert.Equal(t, ChartLine, first.Kind)
	assert.Equal(t, "Chiffre d’affaires · 7 jours", first.Meta)

	second := manager.CreateOrUpdate(context.Background(), "sales", "orders", 90)
	assert.Equal(t, 1, second.Revision)
	assert.Equal(t, "orders", second.Metric)
	assert.Len(t, second.Series.Values, 12)
	assert.Equal(t, []string{"sales"}, manager.Live())
	assert.Equal(t, 90, manager.Period("sales"))
	assert.Equal(t, DefaultPeriod, manager.Period("traffic"))
}

func TestChartManagerFallsBackToZeroSeries(t *testing.T) {
	failing := DataSourceFunc(func(ctx context.Context, id, metric string, period int) Result[Series] {
		return Fail[Series](newFetchError("chart-data", errors.New("connection refused")))
	})
	manager := NewChartManager(ChartManagerOptions{Source: failing, Logger: NopLogger()})

	inst := manager.CreateOrUpdate(context.Background(), "traffic", "visitors", 30)
	assert.True(t, inst.Degraded)
	require.Len(t, inst.Series.Values, 15)
	for _, v := range inst.Series.Values {
		assert.Zero(t, v)
	}
	assert.Equal(t, PeriodLabels(30), inst.Series.Labels)
}

func TestChartManagerReplacesStaleDataOnFailure(t *testing.T) {
	var fail atomic.Bool
	source := DataSourceFunc(func(ctx context.Context, id, metric string, period int) Result[Series] {
		if fail.Load() {
			return Fail[Series](&FetchError{Op: "chart-data", Message: "boom"})
		}
		return Ok(Series{Labels: PeriodLabels(period), Values: []float64{1, 2, 3, 4, 5, 6, 7}, Label: "x"})
	})
	manager := NewChartManager(ChartManagerOptions{Source: source, Logger: NopLogger()})
	manager.CreateOrUpdate(context.Background(), "sales", "revenue", 7)

	fail.Store(true)
	inst := manager.CreateOrUpdate(context.Background(), "sales", "revenue", 7)
	assert.Equal(t, make([]float64, 7), inst.Series.Values)
	assert.Equal(t, 1, inst.Revision)
}

func TestRemoteSourceUsesBackend(t *testing.T) {
	client := chartClientFunc(func(ctx context.Context, q backend.ChartQuery) (backend.ChartSeries, error) {
		assert.Equal(t, "funnel", q.ID)
		assert.Equal(t, 7, q.Period)
		return backend.ChartSeries{Labels: []string{"a"}, Values: []float64{4}}, nil
	})
	result := NewRemoteSource(client).ChartSeries(context.Background(), "funnel", "conversion", 7)
	require.True(t, result.IsOk())
	assert.Equal(t, "Taux de conversion", result.Value.Label)

	broken := chartClientFunc(func(context.Context, backend.ChartQuery) (backend.ChartSeries, error) {
		return backend.ChartSeries{}, &backend.RemoteError{Status: 500, Message: "down"}
	})
	failed := NewRemoteSource(broken).ChartSeries(context.Background(), "funnel", "conversion", 7)
	require.False(t, failed.IsOk())
	assert.Equal(t, 500, failed.Err.Status)
	assert.Equal(t, "down", failed.Err.Message)
}

func TestChartManagerRestyleKeepsData(t *testing.T) {
	var calls atomic.Int32
	source := DataSourceFunc(func(ctx context.Context, id, metric string, period int) Result[Series] {
		calls.Add(1)
		return NewSampleSource(3).ChartSeries(ctx, id, metric, period)
	})
	manager := NewChartManager(ChartManagerOptions{Source: source, Logger: NopLogger()})
	before := manager.CreateOrUpdate(context.Background(), "sales", "revenue", 30)
	manager.CreateOrUpdate(context.Background(), "funnel", "conversion", 30)

	ids := manager.Restyle(ThemeDark, "#ef4444")
	assert.Equal(t, []string{"funnel", "sales"}, ids)
	assert.Equal(t, int32(2), calls.Load())

	after, ok := manager.Get("sales")
	require.True(t, ok)
	assert.Equal(t, before.Series.Values, after.Series.Values)
	assert.Equal(t, "#ef4444", after.Style.Border)
	assert.Equal(t, "#a8b3c7", after.Style.Text)
}

func TestChartManagerSyncHonorsPreference(t *testing.T) {
	manager := NewChartManager(ChartManagerOptions{Source: NewSampleSource(1), Logger: NopLogger()})
	pref := DefaultPreference()
	manager.Sync(context.Background(), pref)
	assert.Equal(t, []string{"funnel", "sales", "traffic"}, manager.Live())

	pref.Charts.Enabled["funnel"] = false
	pref.Charts.Order = []string{"traffic", "funnel", "sales"}
	out := manager.Sync(context.Background(), pref)
	require.Len(t, out, 2)
	assert.Equal(t, "traffic", out[0].ID)
	assert.Equal(t, []string{"sales", "traffic"}, manager.Live())
	assert.Equal(t, []string{"traffic", "sales"}, Layout(pref))
}

func TestChartManagerRenderCachesPerRevision(t *testing.T) {
	cache := NewChartCache(time.Minute)
	manager := NewChartManager(ChartManagerOptions{Source: NewSampleSource(1), Cache: cache, Logger: NopLogger()})
	manager.CreateOrUpdate(context.Background(), "sales", "revenue", 7)
	manager.CreateOrUpdate(context.Background(), "funnel", "conversion", 7)

	html, err := manager.Render("sales")
	require.NoError(t, err)
	assert.Contains(t, html, "echarts")
	_, err = manager.Render("funnel")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	manager.Dispose("sales")
	assert.Equal(t, 1, cache.Len())

	_, err = manager.Render("sales")
	assert.ErrorIs(t, err, ErrUnknownChart)

	manager.DisposeAll()
	assert.Empty(t, manager.Live())
}

func TestChartCacheExpires(t *testing.T) {
	cache := NewChartCache(time.Minute)
	clock := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }
	calls := 0
	render := func() (string, error) {
		calls++
		return "fresh", nil
	}
	key := ChartKey{Chart: "sales", Theme: ThemeLight}
	_, err := cache.GetOrRender(key, render)
	require.NoError(t, err)
	_, err = cache.GetOrRender(key, render)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	clock = clock.Add(2 * time.Minute)
	_, err = cache.GetOrRender(key, render)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestChartCacheKeepsOneSlotPerChart(t *testing.T) {
	cache := NewChartCache(time.Minute)
	calls := 0
	render := func() (string, error) {
		calls++
		return fmt.Sprintf("render-%d", calls), nil
	}
	first, err := cache.GetOrRender(ChartKey{Chart: "sales", Revision: 1, Theme: ThemeLight}, render)
	require.NoError(t, err)
	second, err := cache.GetOrRender(ChartKey{Chart: "sales", Revision: 2, Theme: ThemeLight}, render)
	require.NoError(t, err)
	dark, err := cache.GetOrRender(ChartKey{Chart: "sales", Revision: 2, Theme: ThemeDark}, render)
	require.NoError(t, err)
	assert.Equal(t, []string{"render-1", "render-2", "render-3"}, []string{first, second, dark})
	assert.Equal(t, 1, cache.Len())

	_, err = cache.GetOrRender(ChartKey{Chart: "funnel"}, func() (string, error) { return "", errors.New("boom") })
	require.Error(t, err)
	assert.Equal(t, 1, cache.Len())

	cache.Evict("sales")
	assert.Equal(t, 0, cache.Len())
}

type chartClientFunc func(ctx context.Context, q backend.ChartQuery) (backend.ChartSeries, error)

func (f chartClientFunc) ChartData(ctx context.Context, q backend.ChartQuery) (backend.ChartSeries, error) {
	return f(ctx, q)
}
