package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error without base url")
	}
}

func TestClientGridDataEncodesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/grid-data" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		query := r.URL.Query()
		assert.Equal(t, "Order", query.Get("model"))
		assert.Equal(t, []string{"order_number", "status"}, query["columns[]"])
		assert.Equal(t, []string{"order_number", "status"}, query["columns"])
		assert.Equal(t, "2", query.Get("page"))
		assert.Equal(t, "20", query.Get("page_size"))
		assert.Equal(t, "en attente", query.Get("status"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"columns":     []string{"order_number", "status"},
			"data":        []map[string]any{{"order_number": "CMD-1", "status": "pending"}},
			"total_count": 45,
		})
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL + "/api"})
	require.NoError(t, err)
	page, err := client.GridData(context.Background(), GridQuery{
		Model:    "Order",
		Columns:  []string{"order_number", "status"},
		Status:   "en attente",
		Page:     2,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 45, page.TotalCount)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "CMD-1", page.Rows[0]["order_number"])
}

func TestClientGridDataFallsBackToRowCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"columns":["name"],"data":[{"name":"a"},{"name":"b"}],"total_count":null}`))
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)
	page, err := client.GridData(context.Background(), GridQuery{Model: "Product"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
}

func TestClientForwardsCSRFCookie(t *testing.T) {
	var header string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get(DefaultCSRFHeader)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true,"id":7,"username":"jdoe"}`))
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)
	client.SetCookies([]*http.Cookie{{Name: DefaultCSRFCookie, Value: "token-123"}})

	created, err := client.CreateClient(context.Background(), ClientInput{Username: "jdoe"})
	require.NoError(t, err)
	assert.Equal(t, "token-123", header)
	assert.Equal(t, 7, created.ID)
}

func TestNewLeavesCallerClientUntouched(t *testing.T) {
	var header string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get(DefaultCSRFHeader)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true,"id":8,"username":"amartin"}`))
	}))
	t.Cleanup(server.Close)

	shared := &http.Client{Timeout: 5 * time.Second}
	client, err := New(Config{BaseURL: server.URL, HTTPClient: shared})
	require.NoError(t, err)
	client.SetCookies([]*http.Cookie{{Name: DefaultCSRFCookie, Value: "token-456"}})

	_, err = client.CreateClient(context.Background(), ClientInput{Username: "amartin"})
	require.NoError(t, err)
	assert.Equal(t, "token-456", header)
	if shared.Jar != nil {
		t.Fatalf("caller http.Client gained a cookie jar")
	}
	assert.Equal(t, 5*time.Second, client.client.Timeout)

	other, err := New(Config{BaseURL: server.URL, HTTPClient: shared})
	require.NoError(t, err)
	assert.Empty(t, other.client.Jar.Cookies(other.base))
}

func TestClientRemoteErrorCarriesBackendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error":"Cet identifiant existe déjà"}`))
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)
	_, err = client.CreateClient(context.Background(), ClientInput{Username: "jdoe"})
	require.Error(t, err)
	assert.Equal(t, "Cet identifiant existe déjà", MessageFrom(err))
}

func TestClientMalformedJSONIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)
	_, err = client.CreateOrder(context.Background(), OrderInput{UserID: 1})
	require.Error(t, err)
	assert.Empty(t, MessageFrom(err))
}

func TestClientChartDataRejectsMismatchedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sales", r.URL.Query().Get("id"))
		assert.Equal(t, "30", r.URL.Query().Get("period"))
		_, _ = w.Write([]byte(`{"labels":["a","b"],"data":[1],"label":"x"}`))
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL})
	require.NoError(t, err)
	_, err = client.ChartData(context.Background(), ChartQuery{ID: "sales", Metric: "revenue", Period: 30})
	require.Error(t, err)
}
