package analytics

import (
	"context"
	"errors"
)

// ErrNoSeries is returned when the analytics service has no data for a query.
var ErrNoSeries = errors.New("analytics: no series for query")

// SeriesQuery selects one aggregated metric series.
type SeriesQuery struct {
	Chart   string
	Metric  string
	Period  int
	Segment string
}

// Point is one bucket of a series.
type Point struct {
	Label string
	Value float64
}

// SeriesReport is an aggregated series returned by a BI service.
type SeriesReport struct {
	Chart  string
	Metric string
	Label  string
	Points []Point
}

// SeriesClient fetches metric series from upstream analytics services.
type SeriesClient interface {
	FetchSeries(ctx context.Context, query SeriesQuery) (SeriesReport, error)
}
