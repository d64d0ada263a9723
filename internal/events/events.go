package events

import (
	"encoding/json"
	"time"
)

// EvaluationCompleted is published after an evaluation has been saved.
const EvaluationCompleted = "evaluation.completed"

// Event is the envelope written to the evaluation stream.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// EvaluationPayload describes a saved evaluation.
type EvaluationPayload struct {
	EvaluationID string `json:"evaluationId"`
	RequestID    string `json:"requestId,omitempty"`
	APISource    string `json:"api_sumber"`
	Score        string `json:"score"`
}

// NewEvent creates a new event stamped with now.
func NewEvent(eventType string, payload any, now time.Time) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		Type:      eventType,
		Payload:   payloadBytes,
		Timestamp: now.Unix(),
	}, nil
}
