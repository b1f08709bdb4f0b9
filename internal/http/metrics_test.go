package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/fyrsmithlabs/projectdeck/internal/logging"
	"github.com/fyrsmithlabs/projectdeck/internal/telemetry"
)

func TestHTTPMetrics_MetricsMiddleware(t *testing.T) {
	tt := telemetry.NewTestTelemetry()
	m := NewHTTPMetrics(tt.Meter(telemetry.ScopeHTTP), logging.NewNop())

	e := echo.New()
	e.Use(m.MetricsMiddleware())
	e.GET(ProjectsPath, func(c echo.Context) error {
		return c.JSON(http.StatusOK, []string{})
	})
	e.GET(HealthPath, func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.POST(CreatePath, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusConflict, "taken")
	})

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, ProjectsPath},
		{http.MethodGet, HealthPath},
		{http.MethodPost, CreatePath},
	} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(r.method, r.path, nil))
	}
	ctx := context.Background()

	requests, ok := tt.MetricByName(ctx, "projectdeck.http.requests_total")
	require.True(t, ok, "requests counter not recorded")
	sum, ok := requests.Data.(metricdata.Sum[int64])
	require.True(t, ok, "requests_total has type %T", requests.Data)

	var total int64
	statuses := map[int64]bool{}
	for _, dp := range sum.DataPoints {
		total += dp.Value
		if status, ok := dp.Attributes.Value("status"); ok {
			statuses[status.AsInt64()] = true
		}
	}
	assert.EqualValues(t, 3, total)
	assert.True(t, statuses[http.StatusConflict], "error status was not recorded as 409")

	duration, ok := tt.MetricByName(ctx, "projectdeck.http.request_duration_seconds")
	require.True(t, ok, "duration histogram not recorded")
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.EqualValues(t, 3, count)

	_, ok = tt.MetricByName(ctx, "projectdeck.http.response_size_bytes")
	assert.True(t, ok, "response size histogram not recorded")
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unmatched"},
		{HealthPath, HealthPath},
		{ProjectsPath, ProjectsPath},
		{CreatePath, CreatePath},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.input); got != tt.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
