package queries

import (
	"context"

	"github.com/goliatone/go-admin-console/components/console"
	gocommand "github.com/goliatone/go-command"
)

type consoleProvider interface {
	Get(ctx context.Context, userID, fragment string) *console.Console
}

// StateInput identifies a viewer. Fragment only matters on first boot.
type StateInput struct {
	UserID   string
	Fragment string
}

// StateQuery returns the full renderable console state.
type StateQuery struct {
	consoles consoleProvider
}

// NewStateQuery builds the query.
func NewStateQuery(consoles consoleProvider) *StateQuery {
	return &StateQuery{consoles: consoles}
}

var _ gocommand.Querier[StateInput, console.Snapshot] = (*StateQuery)(nil)

// Query boots the viewer's console if needed and snapshots it.
func (q *StateQuery) Query(ctx context.Context, input StateInput) (console.Snapshot, error) {
	if q.consoles == nil {
		return console.Snapshot{}, errNoSessions
	}
	return q.consoles.Get(ctx, input.UserID, input.Fragment).Snapshot(ctx), nil
}
