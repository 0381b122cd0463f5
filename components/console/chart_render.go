package console

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "320px"

// ErrUnknownChart is returned when rendering an id with no live instance.
var ErrUnknownChart = errors.New("console: unknown chart")

// Render returns the go-echarts HTML for a live chart. Output is cached per
// revision when a cache is configured.
func (m *ChartManager) Render(id string) (string, error) {
	inst, ok := m.Get(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownChart, id)
	}
	m.mu.Lock()
	theme := m.theme
	assets := m.assets
	cache := m.cache
	m.mu.Unlock()

	render := func() (string, error) {
		return renderInstance(inst, theme, assets)
	}
	if cache == nil {
		return render()
	}
	return cache.GetOrRender(ChartKey{Chart: inst.ID, Revision: inst.Revision, Theme: theme}, render)
}

func renderInstance(inst ChartInstance, theme Theme, assets string) (string, error) {
	global := chartGlobalOptions(inst, theme, assets)
	switch inst.Kind {
	case ChartBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(global...)
		bar.SetXAxis(inst.Series.Labels)
		bar.AddSeries(inst.Series.Label, toBarData(inst.Series))
		return renderChart(bar)
	default:
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		line.SetXAxis(inst.Series.Labels)
		line.AddSeries(inst.Series.Label, toLineData(inst.Series))
		line.SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Color: inst.Style.Fill}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: inst.Style.Border}),
		)
		return renderChart(line)
	}
}

func chartGlobalOptions(inst ChartInstance, theme Theme, assets string) []charts.GlobalOpts {
	echartsTheme := types.ThemeWesteros
	if theme == ThemeDark {
		echartsTheme = types.ThemeChalk
	}
	initOpts := opts.Initialization{
		Theme:  echartsTheme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if assets != "" {
		initOpts.AssetsHost = assets
	}
	axisLabel := &opts.AxisLabel{Color: inst.Style.Text}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: inst.Series.Label, Subtitle: inst.Meta}),
		charts.WithColorsOpts(opts.Colors{inst.Style.Border}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: axisLabel}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: axisLabel,
			SplitLine: &opts.SplitLine{
				Show:      opts.Bool(true),
				LineStyle: &opts.LineStyle{Color: inst.Style.Grid},
			},
		}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toLineData(series Series) []opts.LineData {
	data := make([]opts.LineData, len(series.Values))
	for i, value := range series.Values {
		data[i] = opts.LineData{Name: labelAt(series.Labels, i), Value: value}
	}
	return data
}

func toBarData(series Series) []opts.BarData {
	data := make([]opts.BarData, len(series.Values))
	for i, value := range series.Values {
		data[i] = opts.BarData{Name: labelAt(series.Labels, i), Value: value}
	}
	return data
}

func labelAt(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return ""
}
