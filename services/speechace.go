package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"speecheval/config"
	"speecheval/models"
)

const (
	speechAceVendor = "SpeechAce"
	speechAceSource = "SpeechAce (Live)"
)

// SpeechAceAdapter scores open-ended answers with the SpeechAce speech scoring API.
type SpeechAceAdapter struct {
	cfg    config.SpeechAceConfig
	client *http.Client
}

func NewSpeechAceAdapter(cfg config.SpeechAceConfig, client *http.Client) *SpeechAceAdapter {
	return &SpeechAceAdapter{cfg: cfg, client: client}
}

type speechAceRelevance struct {
	Class any `json:"class"`
}

type speechAceIELTSScore struct {
	Overall       any `json:"overall"`
	Fluency       any `json:"fluency"`
	Pronunciation any `json:"pronunciation"`
}

// speechAceResponse covers both the flat fields and the nested speech_score
// block; the flat fields win when both are present.
type speechAceResponse struct {
	Status        string              `json:"status"`
	ShortMessage  string              `json:"short_message"`
	DetailMessage string              `json:"detail_message"`
	IELTSEstimate any                 `json:"ielts_estimate"`
	Transcript    any                 `json:"transcript"`
	Relevance     *speechAceRelevance `json:"relevance"`
	SpeechScore   *struct {
		Transcript any                  `json:"transcript"`
		Relevance  *speechAceRelevance  `json:"relevance"`
		IELTSScore *speechAceIELTSScore `json:"ielts_score"`
	} `json:"speech_score"`
}

func (a *SpeechAceAdapter) Assess(ctx context.Context, audio AudioClip, prompt string) (*models.AssessmentResult, error) {
	if a.cfg.APIKey == "" {
		return nil, configError(speechAceVendor, "server configuration incomplete: SA_API_KEY is not set")
	}

	data, err := audio.bytes()
	if err != nil {
		return nil, requestError(speechAceVendor, err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"relevance_context", prompt},
		{"include_ielts_subscore", "1"},
		{"include_fluency", "1"},
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, requestError(speechAceVendor, err)
		}
	}
	part, err := createFilePart(writer, "user_audio_file", audio.Filename, audio.ContentType)
	if err != nil {
		return nil, requestError(speechAceVendor, err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, requestError(speechAceVendor, err)
	}
	if err := writer.Close(); err != nil {
		return nil, requestError(speechAceVendor, err)
	}

	reqURL, err := url.Parse(a.cfg.Endpoint)
	if err != nil {
		return nil, requestError(speechAceVendor, err)
	}
	query := reqURL.Query()
	query.Set("key", a.cfg.APIKey)
	query.Set("dialect", a.cfg.Dialect)
	query.Set("user_id", a.cfg.ClientID)
	reqURL.RawQuery = query.Encode()

	size := buf.Len()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), &buf)
	if err != nil {
		return nil, requestError(speechAceVendor, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, err := doVendorRequest(ctx, a.client, speechAceVendor, req, size)
	if err != nil {
		return nil, err
	}

	var resp speechAceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, decodeError(speechAceVendor, err)
	}
	if strings.EqualFold(resp.Status, "error") {
		return nil, logicalError(speechAceVendor, orDefault(resp.DetailMessage, orDefault(resp.ShortMessage, "service reported an error")))
	}
	return resp.normalize(), nil
}

func (r *speechAceResponse) normalize() *models.AssessmentResult {
	var (
		score      = r.IELTSEstimate
		transcript = r.Transcript
		relevance  = r.Relevance
		ielts      *speechAceIELTSScore
	)
	if ss := r.SpeechScore; ss != nil {
		ielts = ss.IELTSScore
		if score == nil && ielts != nil {
			score = ielts.Overall
		}
		if transcript == nil {
			transcript = ss.Transcript
		}
		if relevance == nil {
			relevance = ss.Relevance
		}
	}

	result := &models.AssessmentResult{
		APISource:  speechAceSource,
		Score:      scoreOrDefault(score),
		Feedback:   models.FeedbackUnavailable,
		Transcript: textOrDefault(transcript, models.TranscriptUnavailable),
	}

	var parts []string
	if relevance != nil && relevance.Class != nil {
		parts = append(parts, fmt.Sprintf("Relevance: %s.", models.FormatScore(relevance.Class)))
	}
	if ielts != nil && ielts.Fluency != nil {
		parts = append(parts, fmt.Sprintf("Fluency: %s.", models.FormatScore(ielts.Fluency)))
	}
	if ielts != nil && ielts.Pronunciation != nil {
		parts = append(parts, fmt.Sprintf("Pronunciation: %s.", models.FormatScore(ielts.Pronunciation)))
	}
	if len(parts) > 0 {
		result.Feedback = strings.Join(parts, " ")
	}
	return result
}
