package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type Globals struct {
	Config    string `type:"path" short:"c" help:"YAML config file." env:"CONSOLECTL_CONFIG"`
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level."`
	LogFormat string `name:"log-format" default:"zap" enum:"zap,slog" help:"Log backend."`
}

type cli struct {
	Globals

	Serve   serveCmd   `cmd:"" help:"Serve the admin console."`
	Prefs   prefsCmd   `cmd:"" help:"Inspect and edit stored viewer preferences."`
	Actions actionsCmd `cmd:"" help:"List the data-action values the console understands."`
	Views   viewsCmd   `cmd:"" help:"List views and their labels per terminology mode."`
}

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var root cli
	ctx := kong.Parse(&root,
		kong.Name("consolectl"),
		kong.Description("Admin console server and preference tooling."),
		kong.UsageOnError(),
		kong.BindTo(runCtx, (*context.Context)(nil)),
	)
	err := ctx.Run(&root.Globals)
	ctx.FatalIfErrorf(err)
}
