package console

import (
	"context"
	"errors"
	"io"
	"strings"
)

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// ControllerOptions configures the page controller.
type ControllerOptions struct {
	Sessions *Sessions
	Renderer Renderer
	Template string
	// APIBase is where the page sends actions, e.g. /admin/api/console.
	APIBase string
}

// Controller renders the console page for a viewer.
type Controller struct {
	sessions *Sessions
	renderer Renderer
	template string
	apiBase  string
}

// NewController wires sessions and a renderer.
func NewController(opts ControllerOptions) *Controller {
	tpl := opts.Template
	if tpl == "" {
		tpl = "console.html"
	}
	return &Controller{
		sessions: opts.Sessions,
		renderer: opts.Renderer,
		template: tpl,
		apiBase:  strings.TrimRight(opts.APIBase, "/"),
	}
}

// Payload builds the template data. Values are plain maps and strings so the
// template engine never has to reflect over console types.
func (c *Controller) Payload(ctx context.Context, userID, fragment string) (map[string]any, error) {
	if c.sessions == nil {
		return nil, errors.New("console controller requires sessions")
	}
	cons := c.sessions.Get(ctx, userID, fragment)
	snap := cons.Snapshot(ctx)

	nav := make([]map[string]any, 0, len(snap.View.Nav))
	for _, entry := range snap.View.Nav {
		nav = append(nav, map[string]any{"view": entry.View, "label": entry.Label, "active": entry.Active})
	}
	kpis := make([]map[string]any, 0, len(snap.KPIs))
	for _, kpi := range snap.KPIs {
		kpis = append(kpis, map[string]any{"key": kpi.Key, "label": kpi.Label, "display": kpi.Display})
	}
	charts := make([]map[string]any, 0, len(snap.Charts))
	for _, inst := range snap.Charts {
		html, err := cons.RenderChart(inst.ID)
		if err != nil {
			return nil, err
		}
		charts = append(charts, map[string]any{
			"id":       inst.ID,
			"meta":     inst.Meta,
			"degraded": inst.Degraded,
			"html":     html,
		})
	}
	payload := map[string]any{
		"user_id":    snap.UserID,
		"title":      snap.View.Title,
		"active":     snap.View.Active,
		"fragment":   snap.View.Fragment,
		"nav":        nav,
		"kpis":       kpis,
		"charts":     charts,
		"labels":     snap.Labels.Values,
		"theme_name": snap.Theme.Name,
		"theme_mode": string(snap.Theme.Mode),
		"theme_css":  snap.Theme.CSSVariablesInline(),
		"body_class": snap.Theme.BodyClass(snap.Preference.SidebarCollapsed),
		"primary":    snap.Preference.PrimaryColor,
		"api_base":   c.apiBase,
		"interface":  snap.Theme.Interface,
		"modes":      TerminologyModes(),
		"mode":       snap.Preference.Terminology,
	}
	if snap.Grid != nil {
		payload["grid"] = map[string]any{
			"view":    snap.Grid.View,
			"headers": snap.Grid.Headers,
			"body":    string(snap.Grid.Body),
			"pager":   snap.Grid.Pagination.Label,
			"prev":    snap.Grid.Pagination.PrevDisabled,
			"next":    snap.Grid.Pagination.NextDisabled,
		}
	}
	return payload, nil
}

// RenderTemplate renders the console page for the viewer into out.
func (c *Controller) RenderTemplate(ctx context.Context, userID, fragment string, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("console controller requires renderer")
	}
	payload, err := c.Payload(ctx, userID, fragment)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.template, payload, out)
	return err
}
