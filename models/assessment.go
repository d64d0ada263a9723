package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Placeholders used when a vendor omits a field.
const (
	ScoreUnavailable      = "N/A"
	FeedbackUnavailable   = "No feedback available."
	TranscriptUnavailable = "No transcript available."
)

// AssessmentResult is the vendor-agnostic shape every adapter returns.
// Score is passed through from the vendor and may be a number or a string.
type AssessmentResult struct {
	APISource  string `json:"api_sumber"`
	Score      any    `json:"score"`
	Feedback   string `json:"feedback"`
	Transcript string `json:"transcript"`
	Warning    string `json:"warning,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthStatus is returned by the health endpoint.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// FormatScore renders a passthrough score the way it is stored.
func FormatScore(score any) string {
	switch v := score.(type) {
	case nil:
		return ScoreUnavailable
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
