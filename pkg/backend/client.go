package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultCSRFCookie is the cookie the admin backend stores its CSRF token in.
	DefaultCSRFCookie = "csrftoken"
	// DefaultCSRFHeader is the request header the backend expects the token in.
	DefaultCSRFHeader = "X-CSRFToken"
)

var errMissingBaseURL = errors.New("backend: base url is required")

// Paths overrides the relative endpoint paths.
type Paths struct {
	Stats          string `yaml:"stats" json:"stats"`
	Grid           string `yaml:"grid" json:"grid"`
	Chart          string `yaml:"chart" json:"chart"`
	Orders         string `yaml:"orders" json:"orders"`
	Clients        string `yaml:"clients" json:"clients"`
	SavePreference string `yaml:"save_preference" json:"save_preference"`
}

// Config configures the backend client.
type Config struct {
	BaseURL    string
	CSRFCookie string
	CSRFHeader string
	// CSRFToken is sent when the cookie jar holds no token.
	CSRFToken  string
	Paths      Paths
	HTTPClient *http.Client
}

// Client talks to the admin backend JSON endpoints.
type Client struct {
	base       *url.URL
	client     *http.Client
	csrfCookie string
	csrfHeader string
	csrfToken  string
	paths      Paths
}

// New builds a client. When the provided http.Client has no cookie jar, New works on a
// copy carrying its own jar so the CSRF cookie set by the backend is picked up on later
// writes without touching the caller's client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errMissingBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend: parse base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("backend: cookie jar: %w", err)
		}
		copied := *httpClient
		copied.Jar = jar
		httpClient = &copied
	}
	c := &Client{
		base:       base,
		client:     httpClient,
		csrfCookie: cfg.CSRFCookie,
		csrfHeader: cfg.CSRFHeader,
		csrfToken:  cfg.CSRFToken,
		paths:      defaultPaths(cfg.Paths),
	}
	if c.csrfCookie == "" {
		c.csrfCookie = DefaultCSRFCookie
	}
	if c.csrfHeader == "" {
		c.csrfHeader = DefaultCSRFHeader
	}
	return c, nil
}

// SetCookies seeds the client's cookie jar, e.g. with the session and CSRF cookies
// forwarded from the viewer's request.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	if c == nil || c.client.Jar == nil || len(cookies) == 0 {
		return
	}
	c.client.Jar.SetCookies(c.base, cookies)
}

// Stats fetches the raw KPI payload.
func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, c.paths.Stats, nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// GridData fetches one page of tabular data.
func (c *Client) GridData(ctx context.Context, query GridQuery) (GridPage, error) {
	var resp gridResponse
	if err := c.do(ctx, http.MethodGet, c.paths.Grid, query.values(), nil, &resp); err != nil {
		return GridPage{}, err
	}
	return resp.toPage(), nil
}

// ChartData fetches an aggregated series.
func (c *Client) ChartData(ctx context.Context, query ChartQuery) (ChartSeries, error) {
	var resp chartResponse
	if err := c.do(ctx, http.MethodGet, c.paths.Chart, query.values(), nil, &resp); err != nil {
		return ChartSeries{}, err
	}
	if len(resp.Labels) != len(resp.Data) {
		return ChartSeries{}, fmt.Errorf("backend: chart data has %d labels for %d values", len(resp.Labels), len(resp.Data))
	}
	return ChartSeries{Labels: resp.Labels, Values: resp.Data, Label: resp.Label, ChartType: resp.ChartType}, nil
}

// CreateOrder posts a new order.
func (c *Client) CreateOrder(ctx context.Context, input OrderInput) (OrderCreated, error) {
	var resp OrderCreated
	if err := c.do(ctx, http.MethodPost, c.paths.Orders, nil, input, &resp); err != nil {
		return OrderCreated{}, err
	}
	if !resp.OK && resp.Error != "" {
		return OrderCreated{}, &RemoteError{Status: http.StatusOK, Message: resp.Error}
	}
	return resp, nil
}

// CreateClient posts a new client account.
func (c *Client) CreateClient(ctx context.Context, input ClientInput) (ClientCreated, error) {
	var resp ClientCreated
	if err := c.do(ctx, http.MethodPost, c.paths.Clients, nil, input, &resp); err != nil {
		return ClientCreated{}, err
	}
	if !resp.OK && resp.Error != "" {
		return ClientCreated{}, &RemoteError{Status: http.StatusOK, Message: resp.Error}
	}
	return resp, nil
}

// SavePreference mirrors a preference payload to the backend.
func (c *Client) SavePreference(ctx context.Context, payload any) error {
	var resp preferenceResponse
	if err := c.do(ctx, http.MethodPost, c.paths.SavePreference, nil, payload, &resp); err != nil {
		return err
	}
	if resp.Error != "" {
		return &RemoteError{Status: http.StatusOK, Message: resp.Error}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, target any) error {
	endpoint := c.base.String() + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("backend: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		if token := c.csrf(); token != "" {
			req.Header.Set(c.csrfHeader, token)
		}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return &RemoteError{Status: resp.StatusCode, Message: remoteMessage(buf.Bytes())}
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("backend: decode response: %w", err)
	}
	return nil
}

func (c *Client) csrf() string {
	if c.client.Jar != nil {
		for _, cookie := range c.client.Jar.Cookies(c.base) {
			if cookie.Name == c.csrfCookie && cookie.Value != "" {
				return cookie.Value
			}
		}
	}
	return c.csrfToken
}

// RemoteError is returned for non-2xx responses and for explicit {"ok": false} payloads.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: remote error %d", e.Status)
	}
	return fmt.Sprintf("backend: remote error %d: %s", e.Status, e.Message)
}

// MessageFrom extracts the backend-provided message from err, if any.
func MessageFrom(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Message
	}
	return ""
}

// remoteMessage prefers the "error" or "message" field of a JSON body.
func remoteMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			return payload.Error
		case payload.Message != "":
			return payload.Message
		case payload.Detail != "":
			return payload.Detail
		}
		return ""
	}
	return strings.TrimSpace(string(body))
}

func defaultPaths(paths Paths) Paths {
	if paths.Stats == "" {
		paths.Stats = "/stats"
	}
	if paths.Grid == "" {
		paths.Grid = "/grid-data"
	}
	if paths.Chart == "" {
		paths.Chart = "/chart-data"
	}
	if paths.Orders == "" {
		paths.Orders = "/orders"
	}
	if paths.Clients == "" {
		paths.Clients = "/clients"
	}
	if paths.SavePreference == "" {
		paths.SavePreference = "/save-preference"
	}
	return paths
}
