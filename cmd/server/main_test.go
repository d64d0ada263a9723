package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speecheval/config"
	"speecheval/controllers"
	"speecheval/db"
	"speecheval/metrics"
	"speecheval/services"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Server.AllowOrigins = []string{"http://app.example"}
	m := metrics.New()
	ac := controllers.NewAssessmentController(services.NewRegistry(cfg.Vendors), db.NewMemoryEvaluationStore()).WithMetrics(m)
	return setupRouter(cfg, ac, m)
}

func TestSetupRouterCORS(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/analisis_master", nil)
	req.Header.Set("Origin", "http://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetupRouterRoutes(t *testing.T) {
	r := testRouter(t)

	for _, path := range []string{"/", "/health", "/evaluations", "/metrics"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"), path)
	}
}
