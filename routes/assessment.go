package routes

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"

	"speecheval/controllers"
	"speecheval/metrics"
)

//go:embed templates/index.html
var indexPage []byte

// SetupAssessmentRoutes registers the upload page, the assessment endpoint and
// the evaluation history endpoints.
func SetupAssessmentRoutes(router gin.IRouter, ac *controllers.AssessmentController) {
	router.GET("/", IndexHandler)
	router.GET("/health", ac.Health)
	router.POST("/analisis_master", ac.Analyze)
	router.GET("/evaluations", ac.ListEvaluations)
	router.GET("/evaluations/:id", ac.GetEvaluation)
}

// IndexHandler serves the recording upload page.
func IndexHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

// SetupMetricsRoute exposes m at /metrics.
func SetupMetricsRoute(router gin.IRouter, m *metrics.Metrics) {
	router.GET("/metrics", gin.WrapH(m.Handler()))
}
