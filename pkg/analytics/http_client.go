package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPConfig configures the HTTP analytics client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Segment    string
	HTTPClient *http.Client
}

// HTTPClient talks to remote BI services via REST endpoints.
type HTTPClient struct {
	baseURL string
	apiKey  string
	segment string
	client  *http.Client
}

// NewHTTPClient builds a client capable of hitting live analytics APIs.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("analytics: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		segment: cfg.Segment,
		client:  httpClient,
	}, nil
}

// FetchSeries implements SeriesClient by calling the remote series endpoint.
func (c *HTTPClient) FetchSeries(ctx context.Context, query SeriesQuery) (SeriesReport, error) {
	segment := query.Segment
	if segment == "" {
		segment = c.segment
	}
	req := seriesRequest{
		Chart:      query.Chart,
		Metric:     query.Metric,
		PeriodDays: query.Period,
		Segment:    segment,
	}
	var resp seriesResponse
	if err := c.do(ctx, http.MethodPost, "/series/query", req, &resp); err != nil {
		return SeriesReport{}, err
	}
	if len(resp.Points) == 0 {
		return SeriesReport{}, ErrNoSeries
	}
	return resp.toReport(query), nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("analytics: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("analytics: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("analytics: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNoSeries
	}
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("analytics: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("analytics: decode response: %w", err)
	}
	return nil
}

type seriesRequest struct {
	Chart      string `json:"chart"`
	Metric     string `json:"metric"`
	PeriodDays int    `json:"period_days"`
	Segment    string `json:"segment,omitempty"`
}

type seriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type seriesResponse struct {
	Label  string        `json:"label"`
	Points []seriesPoint `json:"points"`
}

func (r seriesResponse) toReport(query SeriesQuery) SeriesReport {
	points := make([]Point, len(r.Points))
	for i, p := range r.Points {
		points[i] = Point{Label: p.Label, Value: p.Value}
	}
	return SeriesReport{Chart: query.Chart, Metric: query.Metric, Label: r.Label, Points: points}
}
