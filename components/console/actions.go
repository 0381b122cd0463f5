package console

import (
	"strconv"
	"strings"
)

// Element describes the action-tagged element an event landed on.
type Element struct {
	// Action is the data-action value.
	Action string `json:"action"`
	// Attrs holds the other data-* attributes without their prefix (view, chart, id...).
	Attrs   map[string]string `json:"attrs,omitempty"`
	Label   string            `json:"label,omitempty"`
	Value   string            `json:"value,omitempty"`
	Checked bool              `json:"checked,omitempty"`
	Form    FormValues        `json:"form,omitempty"`
}

func (e Element) attr(key string) string {
	return strings.TrimSpace(e.Attrs[key])
}

// Action is the closed set of things a console interaction can do.
type Action interface {
	Name() string
	isAction()
}

type (
	Navigate      struct{ View string }
	ToggleSidebar struct{}
	SetThemeMode  struct {
		Theme    Theme
		Announce bool
	}
	SetColor struct {
		Color string
		// Preview restyles without touching the stored preference.
		Preview bool
	}
	PickRandomColor struct{}
	SaveTheme       struct{}
	ResetTheme      struct{}
	SetTerminology  struct{ Mode string }
	ChartsPanel     struct{ Open bool }
	SaveCharts      struct{}
	ResetCharts     struct{}
	MoveChart       struct {
		Chart string
		Delta int
	}
	EnableChart struct {
		Chart   string
		Enabled bool
	}
	SetChartMetric struct{ Chart, Metric string }
	SetChartPeriod struct {
		Chart  string
		Period int
	}
	Paginate struct {
		View  string
		Delta int
	}
	ApplyFilters struct {
		View    string
		Filters GridFilters
	}
	ResetFilters struct{ View string }
	CreateOrder  struct{ Values FormValues }
	CreateClient struct{ Values FormValues }
	SaveProduct  struct {
		Values   FormValues
		Continue bool
	}
	ResetProductForm struct{}
	CancelProduct    struct{}
	ShowForm         struct{ Section string }
	ViewDetails      struct{ ID string }
	EditOrder        struct{ ID string }
	SwitchInterface  struct{ Target string }
	Notify           struct{ Topic string }
	OpenHelp         struct{ View string }
	SearchNav        struct{ Query string }
	Acknowledge      struct{ Label string }
)

func (Navigate) Name() string         { return "navigate" }
func (ToggleSidebar) Name() string    { return "toggle-sidebar" }
func (SetThemeMode) Name() string     { return "theme-mode" }
func (SetColor) Name() string         { return "primary-color" }
func (PickRandomColor) Name() string  { return "random-color" }
func (SaveTheme) Name() string        { return "save-theme" }
func (ResetTheme) Name() string       { return "reset-theme" }
func (SetTerminology) Name() string   { return "terminology" }
func (ChartsPanel) Name() string      { return "charts-panel" }
func (SaveCharts) Name() string       { return "charts-save" }
func (ResetCharts) Name() string      { return "charts-reset" }
func (MoveChart) Name() string        { return "chart-move" }
func (EnableChart) Name() string      { return "chart-enabled" }
func (SetChartMetric) Name() string   { return "chart-metric" }
func (SetChartPeriod) Name() string   { return "chart-period" }
func (Paginate) Name() string         { return "paginate" }
func (ApplyFilters) Name() string     { return "apply-filters" }
func (ResetFilters) Name() string     { return "reset-filters" }
func (CreateOrder) Name() string      { return "create-order" }
func (CreateClient) Name() string     { return "create-client" }
func (SaveProduct) Name() string      { return "save-product" }
func (ResetProductForm) Name() string { return "reset-product-form" }
func (CancelProduct) Name() string    { return "cancel-product" }
func (ShowForm) Name() string         { return "show-form" }
func (ViewDetails) Name() string      { return "view-details" }
func (EditOrder) Name() string        { return "edit-order" }
func (SwitchInterface) Name() string  { return "switch-interface" }
func (Notify) Name() string           { return "notify" }
func (OpenHelp) Name() string         { return "help-open" }
func (SearchNav) Name() string        { return "nav-search" }
func (Acknowledge) Name() string      { return "acknowledge" }

func (Navigate) isAction()         {}
func (ToggleSidebar) isAction()    {}
func (SetThemeMode) isAction()     {}
func (SetColor) isAction()         {}
func (PickRandomColor) isAction()  {}
func (SaveTheme) isAction()        {}
func (ResetTheme) isAction()       {}
func (SetTerminology) isAction()   {}
func (ChartsPanel) isAction()      {}
func (SaveCharts) isAction()       {}
func (ResetCharts) isAction()      {}
func (MoveChart) isAction()        {}
func (EnableChart) isAction()      {}
func (SetChartMetric) isAction()   {}
func (SetChartPeriod) isAction()   {}
func (Paginate) isAction()         {}
func (ApplyFilters) isAction()     {}
func (ResetFilters) isAction()     {}
func (CreateOrder) isAction()      {}
func (CreateClient) isAction()     {}
func (SaveProduct) isAction()      {}
func (ResetProductForm) isAction() {}
func (CancelProduct) isAction()    {}
func (ShowForm) isAction()         {}
func (ViewDetails) isAction()      {}
func (EditOrder) isAction()        {}
func (SwitchInterface) isAction()  {}
func (Notify) isAction()           {}
func (OpenHelp) isAction()         {}
func (SearchNav) isAction()        {}
func (Acknowledge) isAction()      {}

// ActionNames lists the data-action values ParseAction understands.
var ActionNames = []string{
	"navigate", "go-to-products", "go-to-orders", "go-to-settings",
	"toggle-sidebar", "set-light", "set-dark", "theme-mode",
	"primary-color", "set-color", "random-color", "save-theme", "reset-theme",
	"terminology",
	"charts-open", "charts-close", "charts-save", "charts-reset",
	"chart-up", "chart-down", "chart-enabled", "chart-metric", "chart-period",
	"prev-page", "next-page", "apply-filters", "reset-filters",
	"create-order", "create-client", "create-customer", "create-user",
	"save-product", "save-product-continue", "reset-product-form", "cancel-product",
	"view-details", "edit-order",
	"switch-interface", "switch-interface-classic", "switch-interface-modern",
	"logout", "notifications", "help", "export-data",
	"help-open", "nav-search",
}

// ParseAction maps an element to a typed action. Elements carrying an unknown
// action fall back to Acknowledge when they have a visible label; otherwise the
// result is nil and the event is ignored.
func ParseAction(el Element) Action {
	name := strings.TrimSpace(el.Action)
	if name == "" {
		if view := el.attr("view"); view != "" {
			return Navigate{View: view}
		}
	}
	switch name {
	case "navigate":
		if view := el.attr("view"); view != "" {
			return Navigate{View: view}
		}
		return nil
	case "go-to-products", "go-to-orders", "go-to-settings":
		return Navigate{View: strings.TrimPrefix(name, "go-to-")}
	case "toggle-sidebar":
		return ToggleSidebar{}
	case "set-light":
		return SetThemeMode{Theme: ThemeLight}
	case "set-dark":
		return SetThemeMode{Theme: ThemeDark}
	case "theme-mode":
		if el.Checked {
			return SetThemeMode{Theme: ThemeDark, Announce: true}
		}
		return SetThemeMode{Theme: ThemeLight, Announce: true}
	case "primary-color", "set-color":
		return SetColor{Color: el.Value, Preview: el.attr("phase") == "input"}
	case "random-color":
		return PickRandomColor{}
	case "save-theme":
		return SaveTheme{}
	case "reset-theme":
		return ResetTheme{}
	case "terminology":
		return SetTerminology{Mode: el.Value}
	case "charts-open":
		return ChartsPanel{Open: true}
	case "charts-close":
		return ChartsPanel{Open: false}
	case "charts-save":
		return SaveCharts{}
	case "charts-reset":
		return ResetCharts{}
	case "chart-up", "chart-down":
		chart := el.attr("chart")
		if chart == "" {
			return nil
		}
		delta := 1
		if name == "chart-up" {
			delta = -1
		}
		return MoveChart{Chart: chart, Delta: delta}
	case "chart-enabled":
		if chart := el.attr("chart"); chart != "" {
			return EnableChart{Chart: chart, Enabled: el.Checked}
		}
		return nil
	case "chart-metric":
		if chart := el.attr("chart"); chart != "" {
			return SetChartMetric{Chart: chart, Metric: strings.TrimSpace(el.Value)}
		}
		return nil
	case "chart-period":
		if chart := el.attr("chart"); chart != "" {
			return SetChartPeriod{Chart: chart, Period: parsePeriod(el.Value)}
		}
		return nil
	case "prev-page":
		return Paginate{View: el.attr("view"), Delta: -1}
	case "next-page":
		return Paginate{View: el.attr("view"), Delta: 1}
	case "apply-filters":
		return ApplyFilters{View: el.attr("view"), Filters: GridFilters{
			Query:  el.Form["q"],
			Status: el.Form["status"],
			Period: el.Form["period"],
		}}
	case "reset-filters":
		return ResetFilters{View: el.attr("view")}
	case "create-order":
		if len(el.Form) == 0 {
			return ShowForm{Section: "order"}
		}
		return CreateOrder{Values: el.Form}
	case "create-client":
		return CreateClient{Values: el.Form}
	case "create-customer":
		return ShowForm{Section: "customer"}
	case "create-user":
		return ShowForm{Section: "user"}
	case "save-product":
		return SaveProduct{Values: el.Form}
	case "save-product-continue":
		return SaveProduct{Values: el.Form, Continue: true}
	case "reset-product-form":
		return ResetProductForm{}
	case "cancel-product":
		return CancelProduct{}
	case "view-details":
		return ViewDetails{ID: el.attr("id")}
	case "edit-order":
		return EditOrder{ID: el.attr("id")}
	case "switch-interface":
		if target := el.attr("interface"); target != "" {
			return SwitchInterface{Target: target}
		}
		return SwitchInterface{Target: InterfaceClassic}
	case "switch-interface-classic":
		return SwitchInterface{Target: InterfaceClassic}
	case "switch-interface-modern":
		return SwitchInterface{Target: InterfaceModern}
	case "logout", "notifications", "help", "export-data":
		return Notify{Topic: name}
	case "help-open":
		return OpenHelp{View: el.attr("view")}
	case "nav-search":
		return SearchNav{Query: el.Value}
	}
	if label := strings.TrimSpace(el.Label); label != "" {
		return Acknowledge{Label: label}
	}
	return nil
}

func parsePeriod(raw string) int {
	period, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || period <= 0 {
		return DefaultPeriod
	}
	return period
}
