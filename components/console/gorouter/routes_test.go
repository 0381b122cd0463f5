package gorouter

import "testing"

func TestRegisterValidatesConfig(t *testing.T) {
	if err := Register(Config[struct{}]{}); err == nil {
		t.Fatalf("expected error when router is missing")
	}
}

func TestDefaultRouteConfigKeepsOverrides(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{HTML: "/panel"})
	if routes.HTML != "/panel" {
		t.Fatalf("expected override to survive, got %s", routes.HTML)
	}
	if routes.Grid != "/api/console/grid/:view" {
		t.Fatalf("unexpected grid route %s", routes.Grid)
	}
	if routes.WebSocket != "/api/console/ws" {
		t.Fatalf("unexpected websocket route %s", routes.WebSocket)
	}
}

func TestBasePath(t *testing.T) {
	cases := map[string]string{
		"":           "/admin",
		"/":          "/admin",
		"backoffice": "/backoffice",
		"/ops/":      "/ops",
	}
	for in, want := range cases {
		if got := basePath(in); got != want {
			t.Fatalf("basePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGridInputFromQuery(t *testing.T) {
	values := map[string]string{"page": "3", "status": "livrée"}
	query := func(key string) string { return values[key] }

	input := gridInput("u", "orders", query)
	if input.Page != 3 || input.PageSize != 0 {
		t.Fatalf("unexpected paging %+v", input)
	}
	if input.Filters == nil || input.Filters.Status != "livrée" {
		t.Fatalf("expected status filter, got %+v", input.Filters)
	}

	input = gridInput("u", "orders", func(string) string { return "" })
	if input.Filters != nil {
		t.Fatalf("expected no filters")
	}
}
