package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fatflowers/saasgen/internal/app/service/generator"
	"github.com/fatflowers/saasgen/internal/app/service/report"
	"github.com/fatflowers/saasgen/pkg/config"
	"github.com/fatflowers/saasgen/pkg/response"
)

type envelope struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    json.RawMessage          `json:"data"`
}

func do(t *testing.T, r http.Handler, method, path, body string) envelope {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type fakeRunner struct {
	table *report.Table
	err   error
	calls []report.Name
}

func (f *fakeRunner) Run(_ context.Context, name report.Name) (*report.Table, error) {
	f.calls = append(f.calls, name)
	return f.table, f.err
}

func newRouter(t *testing.T, runner ReportRunner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Server.PreviewMaxCustomers = 200
	cfg.Server.PreviewMaxDays = 1100
	r := gin.New()
	RegisterHealthRoutes(r)
	v1 := r.Group("/api/v1")
	RegisterDatasetRoutes(v1.Group("/datasets"), generator.New(zaptest.NewLogger(t).Sugar(), nil), cfg)
	RegisterReportRoutes(v1.Group("/reports"), runner)
	return r
}

func TestRegisterRoutes(t *testing.T) {
	r := newRouter(t, &fakeRunner{})
	var got []string
	for _, rt := range r.Routes() {
		got = append(got, rt.Method+" "+rt.Path)
	}
	assert.ElementsMatch(t, []string{
		"GET /healthz",
		"POST /api/v1/datasets/preview",
		"GET /api/v1/reports",
		"GET /api/v1/reports/:name",
	}, got)
}

func TestHealthz(t *testing.T) {
	env := do(t, newRouter(t, &fakeRunner{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, response.APIResponseCodeOK, env.Code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
}

func TestApiPreviewDataset(t *testing.T) {
	r := newRouter(t, &fakeRunner{})

	t.Run("overrides", func(t *testing.T) {
		env := do(t, r, http.MethodPost, "/api/v1/datasets/preview",
			`{"seed":7,"customers":100,"start_date":"2022-01-01","end_date":"2022-03-31"}`)
		require.Equal(t, response.APIResponseCodeOK, env.Code, string(env.Data))

		var res PreviewDatasetResponse
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.Equal(t, uint64(7), res.Seed)
		assert.Equal(t, "2022-01-01", res.WindowStart)
		assert.Equal(t, "2022-03-31", res.WindowEnd)

		assert.Equal(t, 100, res.Summary.Customers)
		assert.Equal(t, 3, res.Summary.CostMonths)
		require.Len(t, res.Customers, previewSampleSize)
		assert.Equal(t, "C000000", res.Customers[0].ID)
		require.Len(t, res.Costs, 3)
		assert.Equal(t, "2022-01", res.Costs[0].Month)
	})

	t.Run("same seed same summary", func(t *testing.T) {
		a := do(t, r, http.MethodPost, "/api/v1/datasets/preview", `{"seed":1,"customers":50}`)
		b := do(t, r, http.MethodPost, "/api/v1/datasets/preview", `{"seed":1,"customers":50}`)
		assert.JSONEq(t, string(a.Data), string(b.Data))
	})

	t.Run("over limit", func(t *testing.T) {
		env := do(t, r, http.MethodPost, "/api/v1/datasets/preview", `{"customers":5000}`)
		assert.Equal(t, response.APIResponseCodeBadRequest, env.Code)
		assert.Contains(t, string(env.Data), "preview limit")
	})

	t.Run("window over limit", func(t *testing.T) {
		for _, body := range []string{
			`{"customers":10,"start_date":"2022-01-01","end_date":"2025-12-31"}`,
			`{"customers":200,"start_date":"1000-01-01","end_date":"9999-12-31"}`,
		} {
			env := do(t, r, http.MethodPost, "/api/v1/datasets/preview", body)
			assert.Equal(t, response.APIResponseCodeBadRequest, env.Code, body)
			assert.Contains(t, string(env.Data), "days exceeds preview limit", body)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		env := do(t, r, http.MethodPost, "/api/v1/datasets/preview", `{"customers":10,"end_date":"2021-01-01"}`)
		assert.Equal(t, response.APIResponseCodeBadRequest, env.Code)
		assert.Contains(t, string(env.Data), "window")
	})

	t.Run("malformed body", func(t *testing.T) {
		env := do(t, r, http.MethodPost, "/api/v1/datasets/preview", `{"customers":"many"}`)
		assert.Equal(t, response.APIResponseCodeBadRequest, env.Code)
	})
}

func TestApiPreviewDataset_EmptyBodyUsesConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Generator.Customers = 20
	r := gin.New()
	RegisterDatasetRoutes(r, generator.New(zaptest.NewLogger(t).Sugar(), nil), cfg)

	env := do(t, r, http.MethodPost, "/preview", "")
	require.Equal(t, response.APIResponseCodeOK, env.Code, string(env.Data))
	assert.Contains(t, string(env.Data), `"customers":20`)
}

func TestApiReports(t *testing.T) {
	runner := &fakeRunner{table: &report.Table{
		Name:    report.RevenueBySegment,
		Columns: []string{"segment", "total_revenue"},
		Rows:    [][]any{{"SMB", "1200.00"}},
	}}
	r := newRouter(t, runner)

	env := do(t, r, http.MethodGet, "/api/v1/reports", "")
	require.Equal(t, response.APIResponseCodeOK, env.Code)
	var names []string
	require.NoError(t, json.Unmarshal(env.Data, &names))
	assert.Len(t, names, len(report.Names()))
	assert.Contains(t, names, "churn_spike_detection")

	env = do(t, r, http.MethodGet, "/api/v1/reports/revenue_by_segment", "")
	require.Equal(t, response.APIResponseCodeOK, env.Code)
	assert.JSONEq(t, `{"name":"revenue_by_segment","columns":["segment","total_revenue"],"rows":[["SMB","1200.00"]]}`, string(env.Data))

	env = do(t, r, http.MethodGet, "/api/v1/reports/ltv", "")
	assert.Equal(t, response.APIResponseCodeNotFound, env.Code)
	assert.Equal(t, []report.Name{report.RevenueBySegment}, runner.calls)

	runner.err = errors.New("relation \"payments\" does not exist")
	env = do(t, r, http.MethodGet, "/api/v1/reports/monthly_revenue", "")
	assert.Equal(t, response.APIResponseCodeError, env.Code)
	assert.Contains(t, string(env.Data), "does not exist")
}
