package queries

import (
	"context"

	"github.com/goliatone/go-admin-console/components/console"
	gocommand "github.com/goliatone/go-command"
)

// ChartInput names a live chart of a viewer.
type ChartInput struct {
	UserID  string
	ChartID string
}

// ChartOutput carries the chart state and its rendered markup.
type ChartOutput struct {
	Instance console.ChartInstance `json:"instance"`
	HTML     string                `json:"html"`
}

// ChartQuery renders one chart.
type ChartQuery struct {
	consoles consoleProvider
}

// NewChartQuery builds the query.
func NewChartQuery(consoles consoleProvider) *ChartQuery {
	return &ChartQuery{consoles: consoles}
}

var _ gocommand.Querier[ChartInput, ChartOutput] = (*ChartQuery)(nil)

// Query returns console.ErrUnknownChart for disabled or unknown charts.
func (q *ChartQuery) Query(ctx context.Context, input ChartInput) (ChartOutput, error) {
	if q.consoles == nil {
		return ChartOutput{}, errNoSessions
	}
	charts := q.consoles.Get(ctx, input.UserID, "").Charts()
	inst, ok := charts.Get(input.ChartID)
	if !ok {
		return ChartOutput{}, console.ErrUnknownChart
	}
	html, err := charts.Render(input.ChartID)
	if err != nil {
		return ChartOutput{}, err
	}
	return ChartOutput{Instance: inst, HTML: html}, nil
}
