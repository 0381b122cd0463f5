// Package console re-exports the console engine for hosts embedding it.
package console

import (
	core "github.com/goliatone/go-admin-console/components/console"
)

// Console exposes the underlying components/console.Console type.
type Console = core.Console

// Options re-export for convenience.
type Options = core.Options

// Sessions is the per-viewer console registry.
type Sessions = core.Sessions

// New proxies to the internal constructor.
func New(opts Options) *Console {
	return core.New(opts)
}

// NewSessions builds a registry that derives per-viewer options from options.
func NewSessions(options func(userID string) Options) *Sessions {
	return core.NewSessions(options)
}
