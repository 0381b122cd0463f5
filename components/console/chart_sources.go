package console

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/goliatone/go-admin-console/pkg/backend"
)

// Series is one labeled data series.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Label  string    `json:"label"`
}

// DataSource supplies chart series.
type DataSource interface {
	ChartSeries(ctx context.Context, id, metric string, period int) Result[Series]
}

// DataSourceFunc adapts a function into a DataSource.
type DataSourceFunc func(ctx context.Context, id, metric string, period int) Result[Series]

func (f DataSourceFunc) ChartSeries(ctx context.Context, id, metric string, period int) Result[Series] {
	return f(ctx, id, metric, period)
}

var metricLabels = map[string]string{
	"revenue":    "Chiffre d’affaires",
	"orders":     "Commandes",
	"aov":        "Panier moyen",
	"conversion": "Taux de conversion",
	"abandon":    "Abandon panier",
	"refunds":    "Remboursements",
	"visitors":   "Visiteurs",
	"sessions":   "Sessions",
	"bounce":     "Taux de rebond",
}

// MetricLabel returns the display label for a metric.
func MetricLabel(metric string) string {
	if label, ok := metricLabels[metric]; ok {
		return label
	}
	return "Métrique"
}

// Periods are the selectable chart periods in days.
var Periods = []int{7, 30, 90}

// DefaultPeriod is used when no period is selected.
const DefaultPeriod = 30

// PeriodLabels returns the x-axis labels for a period: weekdays for 7, weeks for
// 90, and two-day buckets otherwise.
func PeriodLabels(period int) []string {
	switch period {
	case 7:
		return []string{"Lun", "Mar", "Mer", "Jeu", "Ven", "Sam", "Dim"}
	case 90:
		labels := make([]string, 12)
		for i := range labels {
			labels[i] = fmt.Sprintf("S%d", i+1)
		}
		return labels
	default:
		labels := make([]string, 15)
		for i := range labels {
			labels[i] = fmt.Sprintf("%dj", (i+1)*2)
		}
		return labels
	}
}

// MetricBounds returns the inclusive range sample values are drawn from.
func MetricBounds(metric string) (minValue, maxValue int) {
	switch metric {
	case "revenue", "aov":
		return 10000, 50000
	case "orders", "visitors", "sessions":
		return 50, 500
	case "conversion", "abandon", "bounce", "refunds":
		return 1, 15
	default:
		return 10, 100
	}
}

// ZeroSeries returns a zero-filled series shaped like the sample series for period.
func ZeroSeries(metric string, period int) Series {
	labels := PeriodLabels(period)
	return Series{Labels: labels, Values: make([]float64, len(labels)), Label: MetricLabel(metric)}
}

// SampleSource generates bounded pseudo-random series.
type SampleSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampleSource seeds a generator. Equal seeds produce equal series.
func NewSampleSource(seed uint64) *SampleSource {
	return &SampleSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *SampleSource) ChartSeries(_ context.Context, _ string, metric string, period int) Result[Series] {
	labels := PeriodLabels(period)
	lo, hi := MetricBounds(metric)
	values := make([]float64, len(labels))
	s.mu.Lock()
	for i := range values {
		values[i] = float64(lo + s.rng.IntN(hi-lo+1))
	}
	s.mu.Unlock()
	return Ok(Series{Labels: labels, Values: values, Label: MetricLabel(metric)})
}

// ChartClient is the backend call RemoteSource depends on.
type ChartClient interface {
	ChartData(ctx context.Context, query backend.ChartQuery) (backend.ChartSeries, error)
}

// RemoteSource reads aggregated series from the backend chart endpoint.
type RemoteSource struct {
	client ChartClient
}

// NewRemoteSource wraps a backend client.
func NewRemoteSource(client ChartClient) *RemoteSource {
	return &RemoteSource{client: client}
}

func (s *RemoteSource) ChartSeries(ctx context.Context, id, metric string, period int) Result[Series] {
	if s.client == nil {
		return Fail[Series](&FetchError{Op: "chart-data", Message: "no backend configured"})
	}
	resp, err := s.client.ChartData(ctx, backend.ChartQuery{ID: id, Metric: metric, Period: period})
	if err != nil {
		return Fail[Series](newFetchError("chart-data", err))
	}
	label := resp.Label
	if label == "" {
		label = MetricLabel(metric)
	}
	return Ok(Series{Labels: resp.Labels, Values: resp.Values, Label: label})
}
