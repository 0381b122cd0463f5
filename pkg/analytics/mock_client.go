package analytics

import (
	"context"
	"slices"
	"sync"
)

// MockClient implements SeriesClient using in-memory fixtures keyed by metric.
type MockClient struct {
	mu     sync.RWMutex
	series map[string]SeriesReport
}

// NewMockClient builds a mock analytics client from the provided fixtures.
func NewMockClient(series map[string]SeriesReport) *MockClient {
	out := make(map[string]SeriesReport, len(series))
	for metric, report := range series {
		out[metric] = cloneReport(report)
	}
	return &MockClient{series: out}
}

// Set replaces the fixture for metric.
func (c *MockClient) Set(metric string, report SeriesReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series[metric] = cloneReport(report)
}

// FetchSeries returns the fixture for the query metric ignoring the period.
func (c *MockClient) FetchSeries(_ context.Context, query SeriesQuery) (SeriesReport, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	report, ok := c.series[query.Metric]
	if !ok {
		return SeriesReport{}, ErrNoSeries
	}
	out := cloneReport(report)
	out.Chart = query.Chart
	out.Metric = query.Metric
	return out, nil
}

func cloneReport(report SeriesReport) SeriesReport {
	report.Points = slices.Clone(report.Points)
	return report
}
