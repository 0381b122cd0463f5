package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-admin-console/components/console"
	gocommand "github.com/goliatone/go-command"
)

type consoleProvider interface {
	Get(ctx context.Context, userID, fragment string) *console.Console
}

// DispatchActionInput carries one UI element activation for a viewer.
// Result, when set, receives the outcome.
type DispatchActionInput struct {
	UserID   string
	Fragment string
	Element  console.Element
	Result   *console.Outcome
}

// DispatchActionCommand routes an element to the viewer's console.
type DispatchActionCommand struct {
	consoles  consoleProvider
	telemetry Telemetry
}

// NewDispatchActionCommand builds the command.
func NewDispatchActionCommand(consoles consoleProvider, telemetry Telemetry) *DispatchActionCommand {
	return &DispatchActionCommand{consoles: consoles, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DispatchActionInput] = (*DispatchActionCommand)(nil)

// Execute parses the element and dispatches the resulting action.
func (c *DispatchActionCommand) Execute(ctx context.Context, input DispatchActionInput) error {
	if c.consoles == nil {
		return errors.New("dispatch action command requires sessions")
	}
	if strings.TrimSpace(input.Element.Action) == "" && len(input.Element.Attrs) == 0 {
		return errors.New("dispatch action command requires an element")
	}
	out := c.consoles.Get(ctx, input.UserID, input.Fragment).Handle(ctx, input.Element)
	if input.Result != nil {
		*input.Result = out
	}
	c.telemetry.Record(ctx, "console.commands.dispatch", map[string]any{
		"user":    input.UserID,
		"action":  input.Element.Action,
		"handled": out.Handled,
	})
	return nil
}

// HashChangeInput reports a browser history move.
type HashChangeInput struct {
	UserID   string
	Fragment string
	Result   *console.Outcome
}

// HashChangeCommand syncs the active view with the location fragment.
type HashChangeCommand struct {
	consoles  consoleProvider
	telemetry Telemetry
}

// NewHashChangeCommand builds the command.
func NewHashChangeCommand(consoles consoleProvider, telemetry Telemetry) *HashChangeCommand {
	return &HashChangeCommand{consoles: consoles, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[HashChangeInput] = (*HashChangeCommand)(nil)

// Execute shows the view named by the fragment. Unknown fragments are ignored.
func (c *HashChangeCommand) Execute(ctx context.Context, input HashChangeInput) error {
	if c.consoles == nil {
		return errors.New("hash change command requires sessions")
	}
	out := c.consoles.Get(ctx, input.UserID, "").HashChanged(ctx, input.Fragment)
	if input.Result != nil {
		*input.Result = out
	}
	c.telemetry.Record(ctx, "console.commands.hashchange", map[string]any{
		"user":     input.UserID,
		"fragment": input.Fragment,
		"handled":  out.Handled,
	})
	return nil
}
