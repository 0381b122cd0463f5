package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/components/console/commands"
	"github.com/goliatone/go-admin-console/components/console/httpapi"
	"github.com/goliatone/go-admin-console/components/console/queries"
)

// UserResolver converts a router.Context into a viewer id.
type UserResolver func(router.Context) string

// Config wires go-router with the console controller, APIs and toast stream.
type Config[T any] struct {
	Router       router.Router[T]
	Controller   *console.Controller
	API          *httpapi.Handlers
	Broadcaster  *console.Broadcaster
	UserResolver UserResolver
	BasePath     string
	Routes       RouteConfig
}

// RouteConfig customizes the relative paths used for console endpoints.
type RouteConfig struct {
	HTML        string
	State       string
	Actions     string
	HashChange  string
	Preferences string
	Reset       string
	Grid        string
	Chart       string
	WebSocket   string
}

// Register mounts console routes (HTML, JSON, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil && cfg.API == nil {
		return errors.New("gorouter: controller or api is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	resolver := cfg.UserResolver
	if resolver == nil {
		resolver = defaultUserResolver
	}

	group := cfg.Router.Group(basePath(cfg.BasePath))

	if cfg.Controller != nil {
		group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
			var buf bytes.Buffer
			if err := cfg.Controller.RenderTemplate(ctx.Context(), resolver(ctx), ctx.Query("fragment"), &buf); err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send(buf.Bytes())
		}))
	}
	if cfg.API != nil {
		registerAPI(group, cfg.API, resolver, routes)
	}
	if cfg.Broadcaster != nil {
		registerWebSocket(group, cfg.Broadcaster, resolver, routes.WebSocket)
	}
	return nil
}

func registerAPI[T any](r router.Router[T], api *httpapi.Handlers, resolver UserResolver, routes RouteConfig) {
	r.Get(routes.State, router.WrapHandler(func(ctx router.Context) error {
		snap, err := api.State.Query(ctx.Context(), queries.StateInput{
			UserID:   resolver(ctx),
			Fragment: ctx.Query("fragment"),
		})
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, snap)
	}))

	r.Post(routes.Actions, router.WrapHandler(func(ctx router.Context) error {
		var el console.Element
		if err := json.Unmarshal(ctx.Body(), &el); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var out console.Outcome
		if err := api.Dispatch.Execute(ctx.Context(), commands.DispatchActionInput{
			UserID:   resolver(ctx),
			Fragment: ctx.Query("fragment"),
			Element:  el,
			Result:   &out,
		}); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		return ctx.JSON(http.StatusOK, out)
	}))

	r.Post(routes.HashChange, router.WrapHandler(func(ctx router.Context) error {
		var payload httpapi.HashChangeRequest
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var out console.Outcome
		if err := api.HashChange.Execute(ctx.Context(), commands.HashChangeInput{
			UserID:   resolver(ctx),
			Fragment: payload.Fragment,
			Result:   &out,
		}); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, out)
	}))

	r.Post(routes.Preferences, router.WrapHandler(func(ctx router.Context) error {
		var pref console.Preference
		if err := json.Unmarshal(ctx.Body(), &pref); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var saved console.Preference
		if err := api.Save.Execute(ctx.Context(), commands.SavePreferenceInput{
			UserID:     resolver(ctx),
			Preference: pref,
			Result:     &saved,
		}); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, saved)
	}))

	r.Post(routes.Reset, router.WrapHandler(func(ctx router.Context) error {
		var payload httpapi.ResetRequest
		if body := ctx.Body(); len(body) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
		}
		if err := api.Reset.Execute(ctx.Context(), commands.ResetPreferenceInput{
			UserID: resolver(ctx),
			Scope:  payload.Scope,
		}); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "reset"})
	}))

	r.Get(routes.Grid, router.WrapHandler(func(ctx router.Context) error {
		input := gridInput(resolver(ctx), ctx.Param("view"), func(key string) string { return ctx.Query(key) })
		out, err := api.Grid.Query(ctx.Context(), input)
		if err != nil {
			return respondError(ctx, http.StatusNotFound, err)
		}
		return ctx.JSON(http.StatusOK, out)
	}))

	r.Get(routes.Chart, router.WrapHandler(func(ctx router.Context) error {
		out, err := api.Chart.Query(ctx.Context(), queries.ChartInput{UserID: resolver(ctx), ChartID: ctx.Param("id")})
		if errors.Is(err, console.ErrUnknownChart) {
			return respondError(ctx, http.StatusNotFound, err)
		}
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, out)
	}))
}

func registerWebSocket[T any](r router.Router[T], hub *console.Broadcaster, resolver UserResolver, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		viewer := strings.TrimSpace(resolver(ws))
		if viewer == "" {
			return ws.Close()
		}
		events, cancel := hub.Subscribe(viewer)
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func gridInput(userID, view string, query func(string) string) queries.GridInput {
	input := queries.GridInput{UserID: userID, View: view}
	input.Page, _ = strconv.Atoi(query("page"))
	input.PageSize, _ = strconv.Atoi(query("page_size"))
	q, status, period := query("q"), query("status"), query("period")
	if q != "" || status != "" || period != "" {
		input.Filters = &console.GridFilters{Query: q, Status: status, Period: period}
	}
	return input
}

func defaultUserResolver(ctx router.Context) string {
	if v, ok := ctx.Locals("user_id").(string); ok && v != "" {
		return v
	}
	if v := strings.TrimSpace(ctx.Header("X-User-ID")); v != "" {
		return v
	}
	return strings.TrimSpace(ctx.Query("user"))
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func basePath(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return "/admin"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return base
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/console"
	}
	if routes.State == "" {
		routes.State = "/api/console/state"
	}
	if routes.Actions == "" {
		routes.Actions = "/api/console/actions"
	}
	if routes.HashChange == "" {
		routes.HashChange = "/api/console/hashchange"
	}
	if routes.Preferences == "" {
		routes.Preferences = "/api/console/preferences"
	}
	if routes.Reset == "" {
		routes.Reset = "/api/console/preferences/reset"
	}
	if routes.Grid == "" {
		routes.Grid = "/api/console/grid/:view"
	}
	if routes.Chart == "" {
		routes.Chart = "/api/console/charts/:id"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/api/console/ws"
	}
	return routes
}
