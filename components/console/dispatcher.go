package console

import (
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/goliatone/go-admin-console/pkg/activity"
	"github.com/goliatone/go-admin-console/pkg/backend"
)

// Writer is the backend write surface used by forms.
type Writer interface {
	CreateOrder(ctx context.Context, input backend.OrderInput) (backend.OrderCreated, error)
	CreateClient(ctx context.Context, input backend.ClientInput) (backend.ClientCreated, error)
}

// PanelState reports a panel change.
type PanelState struct {
	Name string        `json:"name"`
	Open bool          `json:"open"`
	HTML template.HTML `json:"html,omitempty"`
}

// FormState reports a form change.
type FormState struct {
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Reset   bool   `json:"reset"`
}

// Outcome is everything an action changed. Zero fields mean "untouched".
type Outcome struct {
	Action     string          `json:"action"`
	Handled    bool            `json:"handled"`
	Toasts     []Toast         `json:"toasts,omitempty"`
	View       *ViewState      `json:"view,omitempty"`
	Preference *Preference     `json:"preference,omitempty"`
	Theme      *ThemeSelection `json:"theme,omitempty"`
	Labels     *Labels         `json:"labels,omitempty"`
	Charts     []ChartInstance `json:"charts,omitempty"`
	Restyled   []string        `json:"restyled,omitempty"`
	Grid       *GridRender     `json:"grid,omitempty"`
	Panel      *PanelState     `json:"panel,omitempty"`
	Form       *FormState      `json:"form,omitempty"`
	Nav        []NavEntry      `json:"nav,omitempty"`
	Redirect   string          `json:"redirect,omitempty"`
}

// ExportFollowupDelay is the delay of the second export toast.
const ExportFollowupDelay = 1500

var notifyMessages = map[string]string{
	"logout":        "Démo: déconnexion",
	"notifications": "Aucune nouvelle notification",
	"help":          "Aide: Consulter la documentation (non disponible)",
	"export-data":   "Exportation des données en cours...",
}

var interfaceNames = map[string]string{
	InterfaceClassic: "Classique",
	InterfaceModern:  "Moderne",
}

// Dispatcher routes typed actions to the console components.
type Dispatcher struct {
	prefs     *PreferenceStore
	router    *ViewRouter
	charts    *ChartManager
	grid      *GridFetcher
	term      *Terminology
	notifier  *Notifier
	forms     *FormValidator
	help      *HelpPanel
	writer    Writer
	activity  *activity.Emitter
	logger    Logger
	iface     string
	themeName string
	userID    string
	pickColor func() string
}

// Dispatch applies action. Preference changes are persisted before it returns.
func (d *Dispatcher) Dispatch(ctx context.Context, action Action) Outcome {
	if action == nil {
		return Outcome{}
	}
	out := Outcome{Action: action.Name(), Handled: true}
	switch a := action.(type) {
	case Navigate:
		d.navigate(ctx, a.View, &out)
	case ToggleSidebar:
		d.withPreference(&out, d.prefs.ToggleSidebar(ctx))
	case SetThemeMode:
		pref := d.prefs.SetTheme(ctx, a.Theme)
		d.withPreference(&out, pref)
		out.Restyled = d.charts.Restyle(pref.Theme, pref.PrimaryColor)
		if a.Announce {
			msg := "Mode Light"
			if pref.Theme == ThemeDark {
				msg = "Mode Dark"
			}
			out.Toasts = append(out.Toasts, d.notifier.Info(msg))
		}
	case SetColor:
		if a.Preview {
			pref := d.prefs.Snapshot()
			out.Restyled = d.charts.Restyle(pref.Theme, a.Color)
			pref.PrimaryColor = ClampHex(a.Color)
			theme := SelectTheme(d.iface, d.themeName, pref)
			out.Theme = &theme
			return out
		}
		d.setColor(ctx, a.Color, &out)
	case PickRandomColor:
		d.setColor(ctx, d.pickColor(), &out)
	case SaveTheme:
		d.prefs.Save(ctx)
		d.withPreference(&out, d.prefs.Snapshot())
	case ResetTheme:
		pref := d.prefs.ResetTheme(ctx)
		d.withPreference(&out, pref)
		out.Restyled = d.charts.Restyle(pref.Theme, pref.PrimaryColor)
	case SetTerminology:
		pref := d.prefs.SetTerminology(ctx, a.Mode)
		d.withPreference(&out, pref)
		labels := d.applyTerminology(ctx, pref.Terminology)
		out.Labels = &labels
		state := d.router.State(ctx)
		out.View = &state
		out.Toasts = append(out.Toasts, d.notifier.Info("Terminologie mise à jour"))
	case ChartsPanel:
		out.Panel = &PanelState{Name: "charts", Open: a.Open}
	case SaveCharts:
		d.prefs.Save(ctx)
		pref := d.prefs.Snapshot()
		d.withPreference(&out, pref)
		out.Panel = &PanelState{Name: "charts", Open: false}
		out.Charts = d.charts.Sync(ctx, pref)
	case ResetCharts:
		pref := d.prefs.ResetCharts(ctx)
		d.withPreference(&out, pref)
		out.Charts = d.charts.Sync(ctx, pref)
	case MoveChart:
		pref, moved := d.prefs.MoveChart(ctx, a.Chart, a.Delta)
		if !moved {
			return out
		}
		d.withPreference(&out, pref)
		out.Charts = d.charts.Sync(ctx, pref)
	case EnableChart:
		pref := d.prefs.SetChartEnabled(ctx, a.Chart, a.Enabled)
		d.withPreference(&out, pref)
		out.Charts = d.charts.Sync(ctx, pref)
	case SetChartMetric:
		if a.Metric == "" {
			return out
		}
		pref := d.prefs.SetChartMetric(ctx, a.Chart, a.Metric)
		d.withPreference(&out, pref)
		if pref.Charts.Enabled[a.Chart] {
			out.Charts = []ChartInstance{d.charts.CreateOrUpdate(ctx, a.Chart, pref.Charts.Metric[a.Chart], d.charts.Period(a.Chart))}
		}
	case SetChartPeriod:
		pref := d.prefs.Snapshot()
		metric, ok := pref.Charts.Metric[a.Chart]
		if !ok || !pref.Charts.Enabled[a.Chart] {
			return out
		}
		out.Charts = []ChartInstance{d.charts.CreateOrUpdate(ctx, a.Chart, metric, a.Period)}
	case Paginate:
		view := d.gridView(a.View)
		var grid GridRender
		if a.Delta < 0 {
			grid, _ = d.grid.PrevPage(ctx, view)
		} else {
			grid, _ = d.grid.NextPage(ctx, view)
		}
		out.Grid = &grid
	case ApplyFilters:
		grid := d.grid.ApplyFilters(ctx, d.gridView(a.View), a.Filters)
		out.Grid = &grid
		out.Toasts = append(out.Toasts, d.notifier.Info("Filtres appliqués"))
	case ResetFilters:
		grid := d.grid.ResetFilters(ctx, d.gridView(a.View))
		out.Grid = &grid
		out.Toasts = append(out.Toasts, d.notifier.Info("Filtres réinitialisés"))
	case CreateOrder:
		d.createOrder(ctx, a.Values, &out)
	case CreateClient:
		d.createClient(ctx, a.Values, &out)
	case SaveProduct:
		d.saveProduct(a, &out)
	case ResetProductForm:
		out.Form = &FormState{Name: FormProduct, Visible: true, Reset: true}
	case CancelProduct:
		out.Form = &FormState{Name: FormProduct, Visible: true, Reset: true}
		out.Toasts = append(out.Toasts, d.notifier.Info("Annulé"))
	case ShowForm:
		out.Form = &FormState{Name: a.Section, Visible: true}
	case ViewDetails:
		out.Toasts = append(out.Toasts, d.notifier.Info("Détails de la commande "+orUnknown(a.ID)))
	case EditOrder:
		out.Toasts = append(out.Toasts, d.notifier.Info("Modification de la commande "+orUnknown(a.ID)))
	case SwitchInterface:
		d.switchInterface(a.Target, &out)
	case Notify:
		msg, ok := notifyMessages[a.Topic]
		if !ok {
			out.Handled = false
			return out
		}
		out.Toasts = append(out.Toasts, d.notifier.Info(msg))
		if a.Topic == "export-data" {
			followup := d.notifier.Success("Export terminé (simulé)")
			followup.DelayMS = ExportFollowupDelay
			out.Toasts = append(out.Toasts, followup)
		}
	case OpenHelp:
		view := a.View
		if view == "" {
			view = d.router.Active()
		}
		html, err := d.help.Render(view)
		if err != nil {
			d.logger.Warn("help render failed", "view", view, "error", err)
			out.Toasts = append(out.Toasts, d.notifier.Info(notifyMessages["help"]))
			return out
		}
		out.Panel = &PanelState{Name: "help", Open: true, HTML: html}
	case SearchNav:
		out.Nav = FilterNav(d.router.State(ctx).Nav, a.Query)
	case Acknowledge:
		out.Toasts = append(out.Toasts, d.notifier.Info("Démo: "+a.Label))
	default:
		out.Handled = false
	}
	return out
}

func (d *Dispatcher) navigate(ctx context.Context, view string, out *Outcome) {
	if !d.router.Show(ctx, view) {
		out.Handled = false
		return
	}
	d.withPreference(out, d.prefs.SetLastView(ctx, view))
	d.router.SetHash(view)
	state := d.router.State(ctx)
	out.View = &state
	if grid, ok := d.grid.Last(view); ok && d.router.IsDataView(view) {
		out.Grid = &grid
	}
}

func (d *Dispatcher) setColor(ctx context.Context, color string, out *Outcome) {
	pref := d.prefs.SetPrimaryColor(ctx, color)
	d.withPreference(out, pref)
	out.Restyled = d.charts.Restyle(pref.Theme, pref.PrimaryColor)
}

func (d *Dispatcher) withPreference(out *Outcome, pref Preference) {
	out.Preference = &pref
	theme := SelectTheme(d.iface, d.themeName, pref)
	out.Theme = &theme
}

func (d *Dispatcher) applyTerminology(ctx context.Context, mode string) Labels {
	labels := d.term.Apply(ctx, mode)
	labels.Title = d.router.SetTerminology(ctx, mode)
	return labels
}

func (d *Dispatcher) gridView(view string) string {
	if view != "" {
		return view
	}
	return d.router.Active()
}

func (d *Dispatcher) createOrder(ctx context.Context, values FormValues, out *Outcome) {
	payload := values.OrderPayload()
	if err := d.forms.Validate(FormOrder, payload); err != nil {
		out.Toasts = append(out.Toasts, d.notifier.Error(formMessage(err, FormOrder)))
		return
	}
	if d.writer == nil {
		out.Toasts = append(out.Toasts, d.notifier.Error("Erreur lors de la création de la commande"))
		return
	}
	input := backend.OrderInput{
		UserID:          payload["user_id"].(int),
		Status:          values.get("status"),
		ShippingAddress: values.get("shipping_address"),
		ShippingCity:    values.get("shipping_city"),
		ShippingCountry: values.get("shipping_country"),
	}
	created, err := d.writer.CreateOrder(ctx, input)
	if err != nil {
		d.logger.Warn("create order failed", "error", err)
		out.Toasts = append(out.Toasts, d.notifier.Remote(backend.MessageFrom(err), "Erreur lors de la création de la commande"))
		return
	}
	d.record(ctx, "create", "order", fmt.Sprint(created.ID), map[string]any{"order_number": created.OrderNumber})
	out.Toasts = append(out.Toasts, d.notifier.Success(fmt.Sprintf("Commande %s créée", orUnknown(created.OrderNumber))))
	out.Form = &FormState{Name: FormOrder, Reset: true}
	if grid, ok := d.refresh(ctx, "orders"); ok {
		out.Grid = &grid
	}
}

func (d *Dispatcher) createClient(ctx context.Context, values FormValues, out *Outcome) {
	payload := values.ClientPayload()
	if err := d.forms.Validate(FormClient, payload); err != nil {
		out.Toasts = append(out.Toasts, d.notifier.Error(formMessage(err, FormClient)))
		return
	}
	if d.writer == nil {
		out.Toasts = append(out.Toasts, d.notifier.Error("Erreur lors de la création du client"))
		return
	}
	created, err := d.writer.CreateClient(ctx, backend.ClientInput{
		Username:  values.get("username"),
		Email:     values.get("email"),
		FirstName: values.get("first_name"),
		LastName:  values.get("last_name"),
	})
	if err != nil {
		d.logger.Warn("create client failed", "error", err)
		out.Toasts = append(out.Toasts, d.notifier.Remote(backend.MessageFrom(err), "Erreur lors de la création du client"))
		return
	}
	username := created.Username
	if username == "" {
		username = values.get("username")
	}
	d.record(ctx, "create", "client", fmt.Sprint(created.ID), map[string]any{"username": username})
	out.Toasts = append(out.Toasts, d.notifier.Success(fmt.Sprintf("Client %s créé", d.notifier.PlainText(username))))
	out.Form = &FormState{Name: "customer", Reset: true}
	if grid, ok := d.refresh(ctx, "customers"); ok {
		out.Grid = &grid
	}
}

func (d *Dispatcher) saveProduct(a SaveProduct, out *Outcome) {
	payload := a.Values.ProductPayload()
	if err := d.forms.Validate(FormProduct, payload); err != nil {
		out.Toasts = append(out.Toasts, d.notifier.Error(formMessage(err, FormProduct)))
		return
	}
	name := d.notifier.PlainText(a.Values.get("name"))
	if a.Continue {
		out.Toasts = append(out.Toasts, d.notifier.Success(fmt.Sprintf("Produit \"%s\" enregistré. Continuez...", name)))
		out.Form = &FormState{Name: FormProduct, Visible: true, Reset: true}
		return
	}
	out.Toasts = append(out.Toasts, d.notifier.Success(fmt.Sprintf("Produit \"%s\" enregistré !", name)))
}

func (d *Dispatcher) switchInterface(target string, out *Outcome) {
	path, ok := InterfacePaths[target]
	if !ok {
		out.Handled = false
		return
	}
	if target == d.iface {
		out.Toasts = append(out.Toasts, d.notifier.Info(fmt.Sprintf("Vous êtes déjà sur l'interface %s.", interfaceNames[target])))
		return
	}
	out.Toasts = append(out.Toasts, d.notifier.Info(fmt.Sprintf("Redirection vers l'interface %s...", interfaceNames[target])))
	out.Redirect = path
}

// refresh refetches view when it is the active grid.
func (d *Dispatcher) refresh(ctx context.Context, view string) (GridRender, bool) {
	if d.router.Active() != view {
		return GridRender{}, false
	}
	return d.grid.Fetch(ctx, view), true
}

func (d *Dispatcher) record(ctx context.Context, verb, objectType, objectID string, meta map[string]any) {
	if err := d.activity.Emit(ctx, activity.Event{
		Verb:       verb,
		ActorID:    d.userID,
		UserID:     d.userID,
		ObjectType: objectType,
		ObjectID:   objectID,
		Metadata:   meta,
	}); err != nil {
		d.logger.Debug("activity not recorded", "verb", verb, "object", objectType, "error", err)
	}
}

func formMessage(err error, form string) string {
	var fe *FormError
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return formMessages[form]
}

func orUnknown(s string) string {
	if s == "" {
		return "???"
	}
	return s
}
