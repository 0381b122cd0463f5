package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/components/console/gorouter"
	"github.com/goliatone/go-admin-console/components/console/httpapi"
)

type serveCmd struct {
	Listen     string `help:"Listen address (overrides config)."`
	BasePath   string `name:"base-path" help:"Route prefix (overrides config)."`
	Transport  string `help:"HTTP stack: fiber (go-router) or chi."`
	BackendURL string `name:"backend-url" help:"Admin backend base URL (overrides config)."`
	Storage    string `help:"Storage driver: memory, file, sqlite3, postgres, pgx, redis."`
	DSN        string `help:"Storage DSN, directory or redis address."`
}

// apply layers flag values over the file config.
func (cmd *serveCmd) apply(cfg *fileConfig) {
	if cmd.Listen != "" {
		cfg.Listen = cmd.Listen
	}
	if cmd.BasePath != "" {
		cfg.BasePath = cmd.BasePath
	}
	if cmd.Transport != "" {
		cfg.Transport = cmd.Transport
	}
	if cmd.BackendURL != "" {
		cfg.Backend.URL = cmd.BackendURL
	}
	if cmd.Storage != "" {
		cfg.Storage.Driver = cmd.Storage
	}
	if cmd.DSN != "" {
		cfg.Storage.DSN = cmd.DSN
	}
}

func (cmd *serveCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := loadConfig(globals.Config)
	if err != nil {
		return err
	}
	cmd.apply(&cfg)
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("consolectl: %w", err)
	}
	logger := newLogger(globals)

	rt, err := newRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	sessions := rt.sessions()
	defer sessions.Close()

	renderer, err := console.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("consolectl: templates: %w", err)
	}
	controller := console.NewController(console.ControllerOptions{
		Sessions: sessions,
		Renderer: renderer,
		APIBase:  cfg.BasePath + "/api/console",
	})
	handlers := httpapi.NewHandlers(sessions, nil, nil)

	logger.Info("console listening", "addr", cfg.Listen, "transport", cfg.Transport, "base", cfg.BasePath)
	if cfg.Transport == "chi" {
		return serveChi(ctx, cfg, httpapi.NewRouter(httpapi.RouterConfig{
			Handlers:    handlers,
			Controller:  controller,
			Broadcaster: rt.broadcaster,
			BasePath:    cfg.BasePath,
			Logger:      logger,
		}))
	}

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:      server.Router(),
		Controller:  controller,
		API:         handlers,
		Broadcaster: rt.broadcaster,
		BasePath:    cfg.BasePath,
	}); err != nil {
		return fmt.Errorf("consolectl: register routes: %w", err)
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	return server.Serve(cfg.Listen)
}

func serveChi(ctx context.Context, cfg fileConfig, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
