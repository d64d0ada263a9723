package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"math"
	"net/http"

	"speecheval/config"
	"speecheval/models"
)

const (
	languageConfidenceVendor = "Language Confidence"
	languageConfidenceSource = "Language Confidence (Live)"
)

var languageConfidenceFormats = map[string]bool{
	"wav": true, "mp3": true, "webm": true, "m4a": true, "ogg": true,
}

// LanguageConfidenceAdapter scores unscripted speech with the Language Confidence API.
type LanguageConfidenceAdapter struct {
	cfg    config.LanguageConfidenceConfig
	client *http.Client
}

func NewLanguageConfidenceAdapter(cfg config.LanguageConfidenceConfig, client *http.Client) *LanguageConfidenceAdapter {
	return &LanguageConfidenceAdapter{cfg: cfg, client: client}
}

type languageConfidenceRequest struct {
	AudioBase64 string                    `json:"audio_base64"`
	AudioFormat string                    `json:"audio_format"`
	Context     languageConfidenceContext `json:"context"`
}

type languageConfidenceContext struct {
	Question string `json:"question"`
}

// languageConfidenceResponse lists the fields we read. Absent fields stay nil
// and fall back to the models placeholders.
type languageConfidenceResponse struct {
	Overall *struct {
		OverallScore any `json:"overall_score"`
	} `json:"overall"`
	Metadata *struct {
		ContentRelevanceFeedback any `json:"content_relevance_feedback"`
		PredictedText            any `json:"predicted_text"`
	} `json:"metadata"`
}

func (a *LanguageConfidenceAdapter) Assess(ctx context.Context, audio AudioClip, prompt string) (*models.AssessmentResult, error) {
	if a.cfg.APIKey == "" {
		return nil, configError(languageConfidenceVendor, "server configuration incomplete: LC_API_KEY is not set")
	}

	data, err := audio.bytes()
	if err != nil {
		return nil, requestError(languageConfidenceVendor, err)
	}

	payload, err := json.Marshal(languageConfidenceRequest{
		AudioBase64: base64.StdEncoding.EncodeToString(data),
		AudioFormat: LanguageConfidenceFormat(audio.Filename),
		Context:     languageConfidenceContext{Question: prompt},
	})
	if err != nil {
		return nil, requestError(languageConfidenceVendor, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, requestError(languageConfidenceVendor, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", a.cfg.APIKey)

	body, err := doVendorRequest(ctx, a.client, languageConfidenceVendor, req, len(payload))
	if err != nil {
		return nil, err
	}

	var resp languageConfidenceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, decodeError(languageConfidenceVendor, err)
	}
	return resp.normalize(), nil
}

func (r *languageConfidenceResponse) normalize() *models.AssessmentResult {
	result := &models.AssessmentResult{
		APISource:  languageConfidenceSource,
		Score:      models.ScoreUnavailable,
		Feedback:   models.FeedbackUnavailable,
		Transcript: models.TranscriptUnavailable,
	}
	if r.Overall != nil && r.Overall.OverallScore != nil {
		result.Score = roundScore(r.Overall.OverallScore)
	}
	if r.Metadata != nil {
		result.Feedback = textOrDefault(r.Metadata.ContentRelevanceFeedback, models.FeedbackUnavailable)
		result.Transcript = textOrDefault(r.Metadata.PredictedText, models.TranscriptUnavailable)
	}
	return result
}

// LanguageConfidenceFormat is the audio_format sent for filename.
func LanguageConfidenceFormat(filename string) string {
	return audioFormat(filename, languageConfidenceFormats)
}

// roundScore rounds numeric scores to two decimals, halves to even, and leaves
// anything else untouched.
func roundScore(v any) any {
	f, ok := v.(float64)
	if !ok {
		return v
	}
	return math.RoundToEven(f*100) / 100
}
