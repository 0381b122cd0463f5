package backend

import (
	"net/url"
	"strconv"
)

// GridQuery describes a paginated listing request.
type GridQuery struct {
	Model    string
	Columns  []string
	Query    string
	Status   string
	Period   string
	Page     int
	PageSize int
	// Extra carries model specific filters (e.g. is_staff=false for customers).
	Extra map[string]string
}

func (q GridQuery) values() url.Values {
	values := url.Values{}
	values.Set("model", q.Model)
	// Both spellings: jQuery style columns[] and Django getlist("columns").
	for _, column := range q.Columns {
		values.Add("columns", column)
		values.Add("columns[]", column)
	}
	if q.Query != "" {
		values.Set("q", q.Query)
	}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.Period != "" {
		values.Set("period", q.Period)
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(q.PageSize))
	}
	for key, value := range q.Extra {
		values.Set(key, value)
	}
	return values
}

// GridPage is one page of rows plus the total row count.
type GridPage struct {
	Columns    []string
	Rows       []map[string]any
	TotalCount int
}

type gridResponse struct {
	Columns    []string         `json:"columns"`
	Data       []map[string]any `json:"data"`
	TotalCount *int             `json:"total_count"`
}

func (r gridResponse) toPage() GridPage {
	total := len(r.Data)
	if r.TotalCount != nil {
		total = *r.TotalCount
	}
	return GridPage{Columns: r.Columns, Rows: r.Data, TotalCount: total}
}

// ChartQuery selects a chart series either by chart id/metric/period or by the
// generic model/field/frequency/operation aggregation.
type ChartQuery struct {
	ID        string
	Metric    string
	Period    int
	Model     string
	Field     string
	Frequency string
	Operation string
}

func (q ChartQuery) values() url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set("id", q.ID)
	set("metric", q.Metric)
	if q.Period > 0 {
		values.Set("period", strconv.Itoa(q.Period))
	}
	set("model", q.Model)
	set("field", q.Field)
	set("frequency", q.Frequency)
	set("operation", q.Operation)
	return values
}

// ChartSeries is a labeled series of values.
type ChartSeries struct {
	Labels    []string
	Values    []float64
	Label     string
	ChartType string
}

type chartResponse struct {
	Labels    []string  `json:"labels"`
	Data      []float64 `json:"data"`
	Label     string    `json:"label"`
	ChartType string    `json:"chart_type"`
}

// OrderInput is the create-order payload.
type OrderInput struct {
	UserID          int    `json:"user_id"`
	Status          string `json:"status,omitempty"`
	ShippingAddress string `json:"shipping_address,omitempty"`
	ShippingCity    string `json:"shipping_city,omitempty"`
	ShippingCountry string `json:"shipping_country,omitempty"`
}

// OrderCreated is returned by a successful create-order call.
type OrderCreated struct {
	OK          bool   `json:"ok"`
	ID          int    `json:"id"`
	OrderNumber string `json:"order_number"`
	Error       string `json:"error,omitempty"`
}

// ClientInput is the create-client payload.
type ClientInput struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// ClientCreated is returned by a successful create-client call.
type ClientCreated struct {
	OK       bool   `json:"ok"`
	ID       int    `json:"id"`
	Username string `json:"username"`
	Error    string `json:"error,omitempty"`
}

type preferenceResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}
