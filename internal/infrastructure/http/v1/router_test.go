package v1

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	appctx "metalstock/internal/core/context"
	"metalstock/internal/infrastructure/metrics"
	"metalstock/pkg/logger"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type validator struct{}

func (validator) ValidateToken(token string) (*appctx.UserContext, error) {
	if token == "operator" {
		return &appctx.UserContext{UserID: "0190a000-0000-7000-8000-0000000000aa", Role: appctx.RoleOperator}, nil
	}
	return nil, errors.New("bad token")
}

func testRouter(t *testing.T, db pinger, reg *metrics.Registry) *gin.Engine {
	t.Helper()
	r := NewRouter(RouterConfig{
		DB:              db,
		Metrics:         reg,
		Logger:          logger.Nop(),
		JWTValidator:    validator{},
		InventoryLocale: language.Russian,
	})
	require.NotNil(t, r)
	return r
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r := testRouter(t, pinger{}, nil)
	assert.Equal(t, http.StatusOK, get(r, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/health/ready", "").Code)

	down := testRouter(t, pinger{err: errors.New("connection refused")}, nil)
	w := get(down, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unhealthy")
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	r := testRouter(t, pinger{}, nil)

	for _, path := range []string{
		"/api/v1/positions",
		"/api/v1/inventory",
		"/api/v1/movements",
		"/api/v1/work-logs",
		"/api/v1/dashboard",
		"/api/v1/catalog/companies",
		"/api/v1/catalog/materials",
		"/api/v1/catalog/service-rates",
	} {
		assert.Equal(t, http.StatusUnauthorized, get(r, path, "").Code, path)
	}
}

func TestRouter_AuditIsAdminOnly(t *testing.T) {
	r := testRouter(t, pinger{}, nil)

	w := get(r, "/api/v1/audit", "operator")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r := testRouter(t, pinger{}, metrics.New())

	get(r, "/health/live", "")
	w := get(r, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `metalstock_http_requests_total{method="GET",route="/health/live",status="200"} 1`)
}
