package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatScore(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "N/A"},
		{"B2", "B2"},
		{7.46, "7.46"},
		{82.0, "82"},
		{5, "5"},
		{json.Number("6.5"), "6.5"},
		{true, "true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatScore(tt.in), "%v", tt.in)
	}
}

func TestNewEvaluation(t *testing.T) {
	at := time.Date(2024, 5, 1, 17, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	e := NewEvaluation(&AssessmentResult{
		APISource:  "SpeechAce (Live)",
		Score:      6.5,
		Feedback:   "Fluency: 7.",
		Transcript: "hi",
		Warning:    "ignored",
	}, at)

	assert.True(t, e.ID.IsZero())
	assert.Equal(t, PlaceholderUserID, e.UserID)
	assert.Equal(t, "6.5", e.Score)
	assert.Equal(t, time.UTC, e.TestedAt.Location())
	assert.True(t, at.Equal(e.TestedAt))
}

func TestAssessmentResultJSONOmitsEmptyWarning(t *testing.T) {
	b, err := json.Marshal(AssessmentResult{APISource: "x", Score: ScoreUnavailable, Feedback: "f", Transcript: "t"})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"api_sumber":"x","score":"N/A","feedback":"f","transcript":"t"}`, string(b))
}
