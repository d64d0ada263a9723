package services

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"github.com/google/uuid"

	"speecheval/config"
	"speecheval/models"
)

const (
	speechSuperVendor   = "SpeechSuper"
	speechSuperSource   = "SpeechSuper (Live)"
	speechSuperCoreType = "asr.eval"
)

var speechSuperFormats = map[string]bool{
	"wav": true, "mp3": true, "webm": true, "ogg": true,
}

// SpeechSuperAdapter scores unscripted speech with SpeechSuper's asr.eval core.
// The connect and start commands travel together in the text part of one
// multipart request.
type SpeechSuperAdapter struct {
	cfg    config.SpeechSuperConfig
	client *http.Client
	now    func() time.Time
}

func NewSpeechSuperAdapter(cfg config.SpeechSuperConfig, client *http.Client, now func() time.Time) *SpeechSuperAdapter {
	if now == nil {
		now = time.Now
	}
	return &SpeechSuperAdapter{cfg: cfg, client: client, now: now}
}

type speechSuperEnvelope struct {
	Connect speechSuperConnect `json:"connect"`
	Start   speechSuperStart   `json:"start"`
}

type speechSuperConnect struct {
	Cmd   string `json:"cmd"`
	Param struct {
		SDK struct {
			Version  int `json:"version"`
			Source   int `json:"source"`
			Protocol int `json:"protocol"`
		} `json:"sdk"`
		App struct {
			ApplicationID string `json:"applicationId"`
			Timestamp     string `json:"timestamp"`
			Sig           string `json:"sig"`
		} `json:"app"`
	} `json:"param"`
}

type speechSuperStart struct {
	Cmd   string `json:"cmd"`
	Param struct {
		App struct {
			UserID        string `json:"userId"`
			ApplicationID string `json:"applicationId"`
			Timestamp     string `json:"timestamp"`
			Sig           string `json:"sig"`
		} `json:"app"`
		Audio struct {
			AudioType   string `json:"audioType"`
			Channel     int    `json:"channel"`
			SampleBytes int    `json:"sampleBytes"`
			SampleRate  int    `json:"sampleRate"`
		} `json:"audio"`
		Request struct {
			CoreType string `json:"coreType"`
			TokenID  string `json:"tokenId"`
		} `json:"request"`
	} `json:"param"`
}

type speechSuperResponse struct {
	TokenID string `json:"tokenId"`
	ErrID   any    `json:"errId"`
	Error   any    `json:"error"`
	Result  *struct {
		Overall       any     `json:"overall"`
		Recognition   any     `json:"recognition"`
		Pronunciation any     `json:"pronunciation"`
		Fluency       any     `json:"fluency"`
		Error         any     `json:"error"`
	} `json:"result"`
}

// SpeechSuperSignatures derives the connect and start signatures:
// hex(SHA1(appKey+timestamp+secretKey)) and hex(SHA1(appKey+timestamp+userID+secretKey)).
func SpeechSuperSignatures(appKey, secretKey, timestamp, userID string) (connectSig, startSig string) {
	return sha1Hex(appKey + timestamp + secretKey), sha1Hex(appKey + timestamp + userID + secretKey)
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// SpeechSuperFormat is the audioType sent for filename.
func SpeechSuperFormat(filename string) string {
	return audioFormat(filename, speechSuperFormats)
}

// newTokenID only has to keep concurrent sessions apart on the vendor side.
func newTokenID(timestamp string) string {
	return fmt.Sprintf("token-%s-%s", timestamp, uuid.NewString()[:8])
}

func (a *SpeechSuperAdapter) envelope(filename string) speechSuperEnvelope {
	timestamp := strconv.FormatInt(a.now().Unix(), 10)
	connectSig, startSig := SpeechSuperSignatures(a.cfg.AppKey, a.cfg.SecretKey, timestamp, a.cfg.UserID)

	var env speechSuperEnvelope
	env.Connect.Cmd = "connect"
	env.Connect.Param.SDK.Version = 16777472
	env.Connect.Param.SDK.Source = 9
	env.Connect.Param.SDK.Protocol = 2
	env.Connect.Param.App.ApplicationID = a.cfg.AppKey
	env.Connect.Param.App.Timestamp = timestamp
	env.Connect.Param.App.Sig = connectSig

	env.Start.Cmd = "start"
	env.Start.Param.App.UserID = a.cfg.UserID
	env.Start.Param.App.ApplicationID = a.cfg.AppKey
	env.Start.Param.App.Timestamp = timestamp
	env.Start.Param.App.Sig = startSig
	env.Start.Param.Audio.AudioType = SpeechSuperFormat(filename)
	env.Start.Param.Audio.Channel = 1
	env.Start.Param.Audio.SampleBytes = 2
	env.Start.Param.Audio.SampleRate = 16000
	env.Start.Param.Request.CoreType = speechSuperCoreType
	env.Start.Param.Request.TokenID = newTokenID(timestamp)
	return env
}

func (a *SpeechSuperAdapter) Assess(ctx context.Context, audio AudioClip, prompt string) (*models.AssessmentResult, error) {
	if a.cfg.AppKey == "" || a.cfg.SecretKey == "" {
		return nil, configError(speechSuperVendor, "server configuration incomplete: SS_APP_KEY and SS_SECRET_KEY must both be set")
	}

	data, err := audio.bytes()
	if err != nil {
		return nil, requestError(speechSuperVendor, err)
	}

	text, err := json.Marshal(a.envelope(audio.Filename))
	if err != nil {
		return nil, requestError(speechSuperVendor, err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="text"`)
	h.Set("Content-Type", "application/json")
	textPart, err := writer.CreatePart(h)
	if err != nil {
		return nil, requestError(speechSuperVendor, err)
	}
	if _, err := textPart.Write(text); err != nil {
		return nil, requestError(speechSuperVendor, err)
	}
	audioPart, err := createFilePart(writer, "audio", audio.Filename, "application/octet-stream")
	if err != nil {
		return nil, requestError(speechSuperVendor, err)
	}
	if _, err := audioPart.Write(data); err != nil {
		return nil, requestError(speechSuperVendor, err)
	}
	if err := writer.Close(); err != nil {
		return nil, requestError(speechSuperVendor, err)
	}

	size := buf.Len()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, &buf)
	if err != nil {
		return nil, requestError(speechSuperVendor, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, err := doVendorRequest(ctx, a.client, speechSuperVendor, req, size)
	if err != nil {
		return nil, err
	}

	var resp speechSuperResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, decodeError(speechSuperVendor, err)
	}
	if msg, failed := resp.vendorError(); failed {
		return nil, logicalError(speechSuperVendor, msg)
	}
	return resp.normalize(), nil
}

// vendorError reports an error the service embedded in a 2xx body.
func (r *speechSuperResponse) vendorError() (string, bool) {
	errValue := r.Error
	if isEmptyValue(errValue) && r.Result != nil {
		errValue = r.Result.Error
	}
	if !isEmptyValue(errValue) {
		msg := describeValue(errValue)
		if !isEmptyValue(r.ErrID) {
			msg = fmt.Sprintf("%s (errId %s)", msg, describeValue(r.ErrID))
		}
		return msg, true
	}
	if !isEmptyValue(r.ErrID) {
		return fmt.Sprintf("service reported errId %s", describeValue(r.ErrID)), true
	}
	return "", false
}

func (r *speechSuperResponse) normalize() *models.AssessmentResult {
	result := &models.AssessmentResult{
		APISource:  speechSuperSource,
		Score:      models.ScoreUnavailable,
		Transcript: models.TranscriptUnavailable,
	}
	var pronunciation, fluency any
	if r.Result != nil {
		result.Score = scoreOrDefault(r.Result.Overall)
		result.Transcript = textOrDefault(r.Result.Recognition, models.TranscriptUnavailable)
		pronunciation, fluency = r.Result.Pronunciation, r.Result.Fluency
	}
	result.Feedback = fmt.Sprintf("Pronunciation Score: %s, Fluency: %s.",
		describeValue(pronunciation), describeValue(fluency))
	return result
}

// isEmptyValue treats null, "", 0 and empty objects as "no error".
func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return t == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

