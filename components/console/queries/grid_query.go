package queries

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-admin-console/components/console"
	gocommand "github.com/goliatone/go-command"
)

var errNoSessions = errors.New("console query requires sessions")

// GridInput selects a grid page. Zero Page keeps the current page; nil Filters
// keeps the current filters.
type GridInput struct {
	UserID   string
	View     string
	Page     int
	PageSize int
	Filters  *console.GridFilters
}

// GridQuery fetches one data view page.
type GridQuery struct {
	consoles consoleProvider
}

// NewGridQuery builds the query.
func NewGridQuery(consoles consoleProvider) *GridQuery {
	return &GridQuery{consoles: consoles}
}

var _ gocommand.Querier[GridInput, console.GridRender] = (*GridQuery)(nil)

// Query fetches the page. Fetch failures are reported inside the render, not
// as an error; unknown views are an error.
func (q *GridQuery) Query(ctx context.Context, input GridInput) (console.GridRender, error) {
	if q.consoles == nil {
		return console.GridRender{}, errNoSessions
	}
	grid := q.consoles.Get(ctx, input.UserID, "").Grid()
	if !grid.Handles(input.View) {
		return console.GridRender{}, fmt.Errorf("view %q has no grid", input.View)
	}
	if input.PageSize > 0 {
		grid.SetPageSize(input.View, input.PageSize)
	}
	if input.Filters != nil {
		return grid.ApplyFilters(ctx, input.View, *input.Filters), nil
	}
	if input.Page > 0 {
		grid.SetPage(input.View, input.Page)
	}
	return grid.Fetch(ctx, input.View), nil
}
