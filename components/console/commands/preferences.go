package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-admin-console/components/console"
	gocommand "github.com/goliatone/go-command"
)

// SavePreferenceInput replaces a viewer's whole preference.
type SavePreferenceInput struct {
	UserID     string
	Preference console.Preference
	Result     *console.Preference
}

// SavePreferenceCommand validates and persists a preference.
type SavePreferenceCommand struct {
	consoles  consoleProvider
	telemetry Telemetry
}

// NewSavePreferenceCommand builds the command.
func NewSavePreferenceCommand(consoles consoleProvider, telemetry Telemetry) *SavePreferenceCommand {
	return &SavePreferenceCommand{consoles: consoles, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SavePreferenceInput] = (*SavePreferenceCommand)(nil)

// Execute stores the normalized preference and re-applies it to the console.
func (c *SavePreferenceCommand) Execute(ctx context.Context, input SavePreferenceInput) error {
	if c.consoles == nil {
		return errors.New("save preference command requires sessions")
	}
	snap := c.consoles.Get(ctx, input.UserID, "").ApplyPreference(ctx, input.Preference)
	if input.Result != nil {
		*input.Result = snap.Preference
	}
	c.telemetry.Record(ctx, "console.commands.preferences.save", map[string]any{
		"user":  input.UserID,
		"theme": string(snap.Preference.Theme),
	})
	return nil
}

// Reset scopes.
const (
	ResetScopeTheme  = "theme"
	ResetScopeCharts = "charts"
	ResetScopeAll    = "all"
)

// ResetPreferenceInput restores part of a viewer's preference.
type ResetPreferenceInput struct {
	UserID string
	Scope  string
}

// ResetPreferenceCommand restores defaults for a scope.
type ResetPreferenceCommand struct {
	consoles  consoleProvider
	telemetry Telemetry
}

// NewResetPreferenceCommand builds the command.
func NewResetPreferenceCommand(consoles consoleProvider, telemetry Telemetry) *ResetPreferenceCommand {
	return &ResetPreferenceCommand{consoles: consoles, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResetPreferenceInput] = (*ResetPreferenceCommand)(nil)

// Execute resets the scope. An empty scope resets everything.
func (c *ResetPreferenceCommand) Execute(ctx context.Context, input ResetPreferenceInput) error {
	if c.consoles == nil {
		return errors.New("reset preference command requires sessions")
	}
	scope := input.Scope
	if scope == "" {
		scope = ResetScopeAll
	}
	cons := c.consoles.Get(ctx, input.UserID, "")
	switch scope {
	case ResetScopeTheme:
		cons.Dispatch(ctx, console.ResetTheme{})
	case ResetScopeCharts:
		cons.Dispatch(ctx, console.ResetCharts{})
	case ResetScopeAll:
		cons.ApplyPreference(ctx, cons.Preferences().Schema().DefaultPreference())
	default:
		return fmt.Errorf("unknown reset scope %q", scope)
	}
	c.telemetry.Record(ctx, "console.commands.preferences.reset", map[string]any{
		"user":  input.UserID,
		"scope": scope,
	})
	return nil
}
