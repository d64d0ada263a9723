package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlaceholderUserID is stored on every evaluation until requests carry a real caller identity.
const PlaceholderUserID = "karyawan-001"

// Evaluation is a persisted assessment result.
type Evaluation struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"userId" json:"userId"`
	APISource  string             `bson:"apiSource" json:"api_sumber"`
	Score      string             `bson:"score" json:"score"`
	Feedback   string             `bson:"feedback" json:"feedback"`
	Transcript string             `bson:"transcript" json:"transcript"`
	TestedAt   time.Time          `bson:"testedAt" json:"testedAt"`
}

// NewEvaluation builds the record persisted for a successful assessment.
func NewEvaluation(result *AssessmentResult, now time.Time) *Evaluation {
	return &Evaluation{
		UserID:     PlaceholderUserID,
		APISource:  result.APISource,
		Score:      FormatScore(result.Score),
		Feedback:   result.Feedback,
		Transcript: result.Transcript,
		TestedAt:   now.UTC(),
	}
}
