package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"speecheval/db"
	"speecheval/internal/events"
	"speecheval/metrics"
	"speecheval/models"
	"speecheval/services"
	"speecheval/utils"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	saveTimeout      = 5 * time.Second
)

// AssessmentController routes uploads to a vendor adapter and records the results.
type AssessmentController struct {
	registry  *services.Registry
	store     db.EvaluationStore
	publisher events.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewAssessmentController wires the controller. store may be nil, in which case
// results are returned but never saved.
func NewAssessmentController(registry *services.Registry, store db.EvaluationStore) *AssessmentController {
	return &AssessmentController{registry: registry, store: store, publisher: events.NopPublisher{}, now: time.Now}
}

// WithPublisher announces every saved evaluation through p.
func (ac *AssessmentController) WithPublisher(p events.Publisher) *AssessmentController {
	if p != nil {
		ac.publisher = p
	}
	return ac
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msg})
}

// WithMetrics records assessment and save outcomes in m.
func (ac *AssessmentController) WithMetrics(m *metrics.Metrics) *AssessmentController {
	ac.metrics = m
	return ac
}

// Analyze handles POST /analisis_master.
func (ac *AssessmentController) Analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		badRequest(c, "Incomplete request: audio file is required")
		return
	}
	apiChoice, ok := c.GetPostForm("apiChoice")
	if !ok {
		badRequest(c, "Incomplete request: apiChoice is required")
		return
	}
	if fileHeader.Filename == "" {
		badRequest(c, "Incomplete request: audio file has no filename")
		return
	}
	if fileHeader.Size == 0 {
		badRequest(c, "Audio file is empty")
		return
	}
	vendor, err := services.ParseVendorID(apiChoice)
	if err != nil {
		badRequest(c, "Invalid API choice: "+err.Error())
		return
	}
	adapter, ok := ac.registry.Lookup(vendor)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "no adapter registered for " + string(vendor)})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "Failed to read audio file")
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	audio := services.AudioClip{
		Filename:    fileHeader.Filename,
		ContentType: detectContentType(fileHeader.Header.Get("Content-Type"), file),
		Reader:      file,
	}
	prompt := c.PostForm("promptText")

	utils.InfoContext(ctx, "assessment requested",
		"request_id", c.GetString(utils.RequestIDKey),
		"vendor", vendor,
		"filename", audio.Filename,
		"content_type", audio.ContentType,
		"bytes", fileHeader.Size,
	)

	start := time.Now()
	result, err := adapter.Assess(ctx, audio, prompt)
	ac.metrics.ObserveAssessment(string(vendor), outcome(err), time.Since(start))
	if err != nil {
		utils.ErrorContext(ctx, "assessment failed",
			"request_id", c.GetString(utils.RequestIDKey), "vendor", vendor, "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	if result == nil || result.APISource == "" {
		utils.ErrorContext(ctx, "adapter returned an empty result", "vendor", vendor)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error: assessment produced no result"})
		return
	}

	if warning := ac.save(ctx, c.GetString(utils.RequestIDKey), result); warning != "" {
		result.Warning = warning
	}
	c.JSON(http.StatusOK, result)
}

// save stores result and returns a warning instead of failing the request.
func (ac *AssessmentController) save(ctx context.Context, requestID string, result *models.AssessmentResult) string {
	if ac.store == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	record := models.NewEvaluation(result, ac.now())
	err := ac.store.SaveEvaluation(ctx, record)
	ac.metrics.ObserveSave(err)
	if err != nil {
		utils.WarnContext(ctx, "failed to save evaluation", "api_source", result.APISource, "error", err)
		return "Assessment succeeded but the result could not be saved: " + err.Error()
	}
	utils.InfoContext(ctx, "evaluation saved", "id", record.ID.Hex(), "api_source", record.APISource)
	ac.announce(ctx, requestID, record)
	return ""
}

// announce publishes the saved record. Failures are only logged.
func (ac *AssessmentController) announce(ctx context.Context, requestID string, record *models.Evaluation) {
	event, err := events.NewEvent(events.EvaluationCompleted, events.EvaluationPayload{
		EvaluationID: record.ID.Hex(),
		RequestID:    requestID,
		APISource:    record.APISource,
		Score:        record.Score,
	}, ac.now())
	if err == nil {
		err = ac.publisher.Publish(ctx, event)
	}
	if err != nil {
		utils.WarnContext(ctx, "failed to publish evaluation event", "id", record.ID.Hex(), "error", err)
	}
}

// outcome labels an adapter call by its error kind.
func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	var ve *services.VendorError
	if errors.As(err, &ve) {
		return string(ve.Kind)
	}
	return metrics.OutcomeError
}

// detectContentType keeps a meaningful declared type and sniffs the content otherwise.
// Sniffing consumes part of r; adapters rewind before reading.
func detectContentType(declared string, r io.Reader) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "application/octet-stream"
	}
	return mtype.String()
}

// Health handles GET /health.
func (ac *AssessmentController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthStatus{
		Status:    "healthy",
		Timestamp: ac.now().UTC().Format(time.RFC3339),
	})
}

// ListEvaluations handles GET /evaluations.
func (ac *AssessmentController) ListEvaluations(c *gin.Context) {
	if ac.store == nil {
		c.JSON(http.StatusOK, []models.Evaluation{})
		return
	}

	limit := int64(defaultListLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	evaluations, err := ac.store.ListEvaluations(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list evaluations"})
		return
	}
	c.JSON(http.StatusOK, evaluations)
}

// GetEvaluation handles GET /evaluations/:id.
func (ac *AssessmentController) GetEvaluation(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid evaluation ID format")
		return
	}
	if ac.store == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: db.ErrEvaluationNotFound.Error()})
		return
	}

	evaluation, err := ac.store.GetEvaluation(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrEvaluationNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to retrieve evaluation"})
		return
	}
	c.JSON(http.StatusOK, evaluation)
}
