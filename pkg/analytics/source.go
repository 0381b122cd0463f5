package analytics

import (
	"context"

	"github.com/goliatone/go-admin-console/components/console"
)

// Source adapts a SeriesClient into a console chart data source.
type Source struct {
	client SeriesClient
}

var _ console.DataSource = (*Source)(nil)

// NewSource wraps client.
func NewSource(client SeriesClient) *Source {
	return &Source{client: client}
}

func (s *Source) ChartSeries(ctx context.Context, id, metric string, period int) console.Result[console.Series] {
	if s == nil || s.client == nil {
		return console.Fail[console.Series](&console.FetchError{Op: "analytics-series", Message: "no analytics client configured"})
	}
	report, err := s.client.FetchSeries(ctx, SeriesQuery{Chart: id, Metric: metric, Period: period})
	if err != nil {
		return console.Fail[console.Series](&console.FetchError{Op: "analytics-series", Err: err})
	}
	series := console.Series{
		Labels: make([]string, len(report.Points)),
		Values: make([]float64, len(report.Points)),
		Label:  report.Label,
	}
	for i, p := range report.Points {
		series.Labels[i] = p.Label
		series.Values[i] = p.Value
	}
	if series.Label == "" {
		series.Label = console.MetricLabel(metric)
	}
	return console.Ok(series)
}
