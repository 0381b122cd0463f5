package console

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"maps"
	"strings"
	"sync"

	"github.com/ettle/strcase"
	"github.com/goliatone/go-admin-console/pkg/backend"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	gridEmptyText = "Aucune donnée"
	gridErrorText = "Erreur de chargement"
)

// GridSpec binds a view to a backend model.
type GridSpec struct {
	Model   string
	Columns []string
	// Extra is sent with every request (e.g. is_staff=false).
	Extra map[string]string
}

// DefaultGrids maps the stock data views to their backend models.
var DefaultGrids = map[string]GridSpec{
	"orders": {
		Model:   "Order",
		Columns: []string{"order_number", "user", "status", "total_amount", "created_at"},
	},
	"products": {
		Model:   "Product",
		Columns: []string{"name", "sku", "category", "price", "stock", "is_active"},
	},
	"customers": {
		Model:   "User",
		Columns: []string{"username", "email", "first_name", "last_name", "date_joined"},
		Extra:   map[string]string{"is_staff": "false"},
	},
	"users": {
		Model:   "User",
		Columns: []string{"username", "email", "is_staff", "is_active", "last_login"},
	},
}

var columnLabels = map[string]string{
	"order_number": "N° commande",
	"user":         "Client",
	"status":       "Statut",
	"total_amount": "Montant",
	"created_at":   "Date",
	"name":         "Nom",
	"sku":          "SKU",
	"category":     "Catégorie",
	"price":        "Prix",
	"stock":        "Stock",
	"is_active":    "Actif",
	"username":     "Identifiant",
	"email":        "Email",
	"first_name":   "Prénom",
	"last_name":    "Nom",
	"date_joined":  "Inscription",
	"is_staff":     "Staff",
	"last_login":   "Dernière connexion",
}

// ColumnLabel returns the header for a column key.
func ColumnLabel(column string) string {
	key := strcase.ToSnake(column)
	if label, ok := columnLabels[key]; ok {
		return label
	}
	words := strings.ReplaceAll(key, "_", " ")
	if words == "" {
		return column
	}
	return strings.ToUpper(words[:1]) + words[1:]
}

var statusLabels = map[string]string{
	"pending":    "En attente",
	"processing": "Préparation",
	"shipped":    "Expédiée",
	"delivered":  "Livrée",
	"cancelled":  "Annulée",
}

// StatusLabel returns the French label for an order status code.
func StatusLabel(status string) string {
	if label, ok := statusLabels[strings.ToLower(status)]; ok {
		return label
	}
	return status
}

// NormalizeStatusFilter drops the "all" placeholders from a status filter.
func NormalizeStatusFilter(status string) string {
	status = strings.TrimSpace(status)
	switch strings.ToLower(status) {
	case "tous", "toutes", "all":
		return ""
	}
	return status
}

// GridFilters are the user-supplied filters of a grid view.
type GridFilters struct {
	Query  string `json:"q"`
	Status string `json:"status"`
	Period string `json:"period"`
}

// Pagination describes the pager controls.
type Pagination struct {
	Page         int    `json:"page"`
	TotalPages   int    `json:"total_pages"`
	Total        int    `json:"total"`
	PrevDisabled bool   `json:"prev_disabled"`
	NextDisabled bool   `json:"next_disabled"`
	Label        string `json:"label"`
}

// NewPagination derives pager state. total <= 0 still yields one page.
func NewPagination(page, pageSize, total int) Pagination {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	page = max(1, min(page, pages))
	return Pagination{
		Page:         page,
		TotalPages:   pages,
		Total:        max(total, 0),
		PrevDisabled: page <= 1,
		NextDisabled: page >= pages,
		Label:        fmt.Sprintf("Page %d / %d", page, pages),
	}
}

// GridRender is the rendered state of a grid view.
type GridRender struct {
	View       string        `json:"view"`
	Columns    []string      `json:"columns"`
	Headers    []string      `json:"headers"`
	Body       template.HTML `json:"body"`
	Rows       int           `json:"rows"`
	Empty      bool          `json:"empty"`
	Failed     bool          `json:"failed"`
	Filters    GridFilters   `json:"filters"`
	Pagination Pagination    `json:"pagination"`
	Err        *FetchError   `json:"-"`
}

// GridClient is the backend call the fetcher depends on.
type GridClient interface {
	GridData(ctx context.Context, query backend.GridQuery) (backend.GridPage, error)
}

// GridFetcherOptions configures a GridFetcher.
type GridFetcherOptions struct {
	Client    GridClient
	Grids     map[string]GridSpec
	PageSize  int
	Logger    Logger
	Telemetry Telemetry
}

type gridState struct {
	page     int
	pageSize int
	total    int
	filters  GridFilters
	last     GridRender
}

// GridFetcher holds per-view paging and filter state. Overlapping fetches for
// the same view are not cancelled: whichever response lands last is kept.
type GridFetcher struct {
	mu        sync.Mutex
	client    GridClient
	grids     map[string]GridSpec
	pageSize  int
	logger    Logger
	telemetry Telemetry
	states    map[string]*gridState
}

// NewGridFetcher builds a fetcher.
func NewGridFetcher(opts GridFetcherOptions) *GridFetcher {
	grids := opts.Grids
	if grids == nil {
		grids = DefaultGrids
	}
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	return &GridFetcher{
		client:    opts.Client,
		grids:     maps.Clone(grids),
		pageSize:  min(size, MaxPageSize),
		logger:    normalizeLogger(opts.Logger),
		telemetry: normalizeTelemetry(opts.Telemetry),
		states:    make(map[string]*gridState),
	}
}

// Handles reports whether view has a grid.
func (g *GridFetcher) Handles(view string) bool {
	_, ok := g.grids[view]
	return ok
}

// Fetch loads the current page of view and renders it. Failures render the
// error row and reset the pager; they are never returned. When the total shrank
// below the current page, the page is clamped to the last one and refetched.
func (g *GridFetcher) Fetch(ctx context.Context, view string) GridRender {
	return g.fetch(ctx, view, true)
}

func (g *GridFetcher) fetch(ctx context.Context, view string, refetch bool) GridRender {
	spec, ok := g.grids[view]
	if !ok {
		return GridRender{View: view}
	}
	g.mu.Lock()
	state := g.stateLocked(view)
	query := backend.GridQuery{
		Model:    spec.Model,
		Columns:  spec.Columns,
		Query:    strings.TrimSpace(state.filters.Query),
		Status:   NormalizeStatusFilter(state.filters.Status),
		Period:   strings.TrimSpace(state.filters.Period),
		Page:     state.page,
		PageSize: state.pageSize,
		Extra:    spec.Extra,
	}
	filters := state.filters
	g.mu.Unlock()

	out := GridRender{View: view, Columns: spec.Columns, Headers: headers(spec.Columns), Filters: filters}
	if g.client == nil {
		return g.fail(view, out, &FetchError{Op: "grid-data", Message: "no backend configured"})
	}
	page, err := g.client.GridData(ctx, query)
	if err != nil {
		return g.fail(view, out, newFetchError("grid-data", err))
	}

	body, err := renderGridRows(spec.Columns, page.Rows)
	if err != nil {
		return g.fail(view, out, &FetchError{Op: "grid-render", Err: err})
	}
	out.Body = body
	out.Rows = len(page.Rows)
	out.Empty = len(page.Rows) == 0
	if out.Empty {
		out.Body = singleRow(len(spec.Columns), "empty", gridEmptyText)
	}

	g.mu.Lock()
	state = g.stateLocked(view)
	state.total = page.TotalCount
	out.Pagination = NewPagination(query.Page, query.PageSize, page.TotalCount)
	if query.Page > out.Pagination.TotalPages {
		state.page = out.Pagination.TotalPages
		if refetch {
			g.mu.Unlock()
			return g.fetch(ctx, view, false)
		}
	}
	state.last = out
	g.mu.Unlock()

	g.telemetry.Record(ctx, "console.grid.fetch", map[string]any{
		"view":  view,
		"model": spec.Model,
		"page":  query.Page,
		"rows":  out.Rows,
		"total": page.TotalCount,
	})
	return out
}

func (g *GridFetcher) fail(view string, out GridRender, ferr *FetchError) GridRender {
	g.logger.Warn("grid fetch failed", "view", view, "error", ferr)
	out.Failed = true
	out.Err = ferr
	out.Body = singleRow(len(out.Columns), "error", gridErrorText)
	out.Pagination = NewPagination(1, g.pageSize, 0)
	g.mu.Lock()
	state := g.stateLocked(view)
	state.page = 1
	state.total = 0
	state.last = out
	g.mu.Unlock()
	return out
}

// Last returns the most recent render of view.
func (g *GridFetcher) Last(view string) (GridRender, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	state, ok := g.states[view]
	if !ok {
		return GridRender{}, false
	}
	return state.last, true
}

// NextPage advances when a later page exists and refetches.
func (g *GridFetcher) NextPage(ctx context.Context, view string) (GridRender, bool) {
	return g.turn(ctx, view, +1)
}

// PrevPage steps back when not on the first page and refetches.
func (g *GridFetcher) PrevPage(ctx context.Context, view string) (GridRender, bool) {
	return g.turn(ctx, view, -1)
}

func (g *GridFetcher) turn(ctx context.Context, view string, delta int) (GridRender, bool) {
	if !g.Handles(view) {
		return GridRender{View: view}, false
	}
	g.mu.Lock()
	state := g.stateLocked(view)
	pager := NewPagination(state.page, state.pageSize, state.total)
	next := state.page + delta
	if next < 1 || next > pager.TotalPages {
		last := state.last
		g.mu.Unlock()
		return last, false
	}
	state.page = next
	g.mu.Unlock()
	return g.Fetch(ctx, view), true
}

// ApplyFilters stores filters, resets to page 1 and refetches.
func (g *GridFetcher) ApplyFilters(ctx context.Context, view string, filters GridFilters) GridRender {
	if !g.Handles(view) {
		return GridRender{View: view}
	}
	g.mu.Lock()
	state := g.stateLocked(view)
	state.filters = filters
	state.page = 1
	g.mu.Unlock()
	return g.Fetch(ctx, view)
}

// ResetFilters clears filters and refetches page 1.
func (g *GridFetcher) ResetFilters(ctx context.Context, view string) GridRender {
	return g.ApplyFilters(ctx, view, GridFilters{})
}

// SetPage jumps to page (clamped at 1) without fetching.
func (g *GridFetcher) SetPage(view string, page int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stateLocked(view).page = max(1, page)
}

// SetPageSize changes the page size (1..100) and resets to page 1.
func (g *GridFetcher) SetPageSize(view string, size int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	state := g.stateLocked(view)
	state.pageSize = max(1, min(size, MaxPageSize))
	state.page = 1
}

// caller holds g.mu.
func (g *GridFetcher) stateLocked(view string) *gridState {
	state, ok := g.states[view]
	if !ok {
		state = &gridState{page: 1, pageSize: g.pageSize}
		g.states[view] = state
	}
	return state
}

func headers(columns []string) []string {
	out := make([]string, len(columns))
	for i, column := range columns {
		out[i] = ColumnLabel(column)
	}
	return out
}

var gridRowsTemplate = template.Must(template.New("rows").Parse(
	`{{range .}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}`,
))

var gridMessageTemplate = template.Must(template.New("message").Parse(
	`<tr><td colspan="{{.Span}}" class="grid-{{.Class}}">{{.Text}}</td></tr>`,
))

func renderGridRows(columns []string, rows []map[string]any) (template.HTML, error) {
	cells := make([][]string, len(rows))
	for i, row := range rows {
		normalized := make(map[string]any, len(row))
		for key, value := range row {
			normalized[strcase.ToSnake(key)] = value
		}
		cells[i] = make([]string, len(columns))
		for j, column := range columns {
			cells[i][j] = cellText(column, normalized[strcase.ToSnake(column)])
		}
	}
	var buf bytes.Buffer
	if err := gridRowsTemplate.Execute(&buf, cells); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func singleRow(span int, class, text string) template.HTML {
	var buf bytes.Buffer
	_ = gridMessageTemplate.Execute(&buf, map[string]any{"Span": max(span, 1), "Class": class, "Text": text})
	return template.HTML(buf.String())
}

func cellText(column string, value any) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case string:
		if column == "status" {
			return StatusLabel(v)
		}
		if v == "" {
			return "-"
		}
		return v
	case bool:
		if v {
			return "Oui"
		}
		return "Non"
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprint(v)
	}
}
