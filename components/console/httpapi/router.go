package httpapi

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goliatone/go-admin-console/components/console"
)

// RouterConfig mounts the console on a chi router.
type RouterConfig struct {
	Handlers    *Handlers
	Controller  *console.Controller
	Broadcaster *console.Broadcaster
	// BasePath prefixes every route. Defaults to /admin.
	BasePath string
	Logger   console.Logger
}

// NewRouter builds the chi handler tree:
//
//	GET  {base}/console                    page
//	GET  {base}/api/console/state
//	POST {base}/api/console/actions
//	POST {base}/api/console/hashchange
//	POST {base}/api/console/preferences
//	POST {base}/api/console/preferences/reset
//	GET  {base}/api/console/grid/{view}
//	GET  {base}/api/console/charts/{id}
//	GET  {base}/api/console/ws             toast stream (WebSocket)
//	GET  {base}/api/console/events         toast stream (SSE)
func NewRouter(cfg RouterConfig) http.Handler {
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.Logger != nil {
		r.Use(LoggerMiddleware(cfg.Logger))
	}
	r.Use(middleware.Recoverer)

	r.Route(base, func(r chi.Router) {
		h := cfg.Handlers
		users := DefaultUserResolver
		if h != nil && h.Users != nil {
			users = h.Users
		}
		if cfg.Controller != nil {
			r.Get("/console", func(w http.ResponseWriter, req *http.Request) {
				var buf bytes.Buffer
				if err := cfg.Controller.RenderTemplate(req.Context(), users(req), req.URL.Query().Get("fragment"), &buf); err != nil {
					respondError(w, http.StatusInternalServerError, err)
					return
				}
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				_, _ = w.Write(buf.Bytes())
			})
		}
		r.Route("/api/console", func(r chi.Router) {
			if h != nil {
				r.Get("/state", h.HandleState)
				r.Post("/actions", h.HandleAction)
				r.Post("/hashchange", h.HandleHashChange)
				r.Post("/preferences", h.HandleSavePreferences)
				r.Post("/preferences/reset", h.HandleResetPreferences)
				r.Get("/grid/{view}", func(w http.ResponseWriter, req *http.Request) {
					h.HandleGrid(w, req, chi.URLParam(req, "view"))
				})
				r.Get("/charts/{id}", func(w http.ResponseWriter, req *http.Request) {
					h.HandleChart(w, req, chi.URLParam(req, "id"))
				})
			}
			if cfg.Broadcaster != nil {
				r.Get("/ws", cfg.Broadcaster.WebSocketHandler(console.ViewerResolver(users)))
				r.Get("/events", cfg.Broadcaster.SSEHandler(console.ViewerResolver(users)))
			}
		})
	})
	return r
}
