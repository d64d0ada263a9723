package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speecheval/config"
	"speecheval/models"
)

var fixedNow = func() time.Time { return time.Unix(1700000000, 0) }

func newSSAdapter(endpoint, appKey, secretKey string) *SpeechSuperAdapter {
	return NewSpeechSuperAdapter(config.SpeechSuperConfig{
		AppKey:    appKey,
		SecretKey: secretKey,
		Endpoint:  endpoint,
		UserID:    "guest-user",
	}, http.DefaultClient, fixedNow)
}

func TestSpeechSuperSignatures(t *testing.T) {
	connectSig, startSig := SpeechSuperSignatures("A", "B", "1700000000", "guest-user")

	// sha1("A1700000000B") and sha1("A1700000000guest-userB")
	assert.Equal(t, "53374923bc1e0956d8e1e72dbef8573480d25ea0", connectSig)
	assert.Equal(t, "ee9dc21c03df6592c27bb487894263517a188687", startSig)

	again, _ := SpeechSuperSignatures("A", "B", "1700000000", "guest-user")
	assert.Equal(t, connectSig, again)
}

func TestSpeechSuperFormat(t *testing.T) {
	tests := map[string]string{
		"clip.wav":  "wav",
		"clip.MP3":  "mp3",
		"clip.ogg":  "ogg",
		"clip.webm": "webm",
		"clip.m4a":  "webm",
		"clip.xyz":  "webm",
		"clip":      "webm",
	}
	for filename, want := range tests {
		assert.Equal(t, want, SpeechSuperFormat(filename), filename)
	}
}

func TestSpeechSuperEnvelope(t *testing.T) {
	var (
		env      speechSuperEnvelope
		audio    []byte
		filename string
	)
	srv := newVendorServer(t, func(w http.ResponseWriter, r *http.Request) {
		if assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			assert.NoError(t, json.Unmarshal([]byte(r.FormValue("text")), &env))
			f, fh, err := r.FormFile("audio")
			if assert.NoError(t, err) {
				defer f.Close()
				filename = fh.Filename
				audio, _ = io.ReadAll(f)
			}
		}
		jsonHandler(http.StatusOK, `{"result":{"overall":82,"recognition":"hello world","pronunciation":80,"fluency":85}}`)(w, r)
	})

	result, err := newSSAdapter(srv.URL, "A", "B").Assess(context.Background(), newClip("clip.xyz", wavBytes), "q")
	require.NoError(t, err)

	assert.Equal(t, "connect", env.Connect.Cmd)
	assert.Equal(t, 16777472, env.Connect.Param.SDK.Version)
	assert.Equal(t, 9, env.Connect.Param.SDK.Source)
	assert.Equal(t, 2, env.Connect.Param.SDK.Protocol)
	assert.Equal(t, "A", env.Connect.Param.App.ApplicationID)
	assert.Equal(t, "1700000000", env.Connect.Param.App.Timestamp)
	assert.Equal(t, "53374923bc1e0956d8e1e72dbef8573480d25ea0", env.Connect.Param.App.Sig)

	assert.Equal(t, "start", env.Start.Cmd)
	assert.Equal(t, "guest-user", env.Start.Param.App.UserID)
	assert.Equal(t, "1700000000", env.Start.Param.App.Timestamp)
	assert.Equal(t, "ee9dc21c03df6592c27bb487894263517a188687", env.Start.Param.App.Sig)
	assert.Equal(t, "webm", env.Start.Param.Audio.AudioType)
	assert.Equal(t, 1, env.Start.Param.Audio.Channel)
	assert.Equal(t, 2, env.Start.Param.Audio.SampleBytes)
	assert.Equal(t, 16000, env.Start.Param.Audio.SampleRate)
	assert.Equal(t, "asr.eval", env.Start.Param.Request.CoreType)
	assert.True(t, strings.HasPrefix(env.Start.Param.Request.TokenID, "token-1700000000-"), env.Start.Param.Request.TokenID)

	assert.Equal(t, "clip.xyz", filename)
	assert.Equal(t, wavBytes, audio)

	assert.Equal(t, &models.AssessmentResult{
		APISource:  "SpeechSuper (Live)",
		Score:      82.0,
		Feedback:   "Pronunciation Score: 80, Fluency: 85.",
		Transcript: "hello world",
	}, result)
}

func TestSpeechSuperTokenIDsDiffer(t *testing.T) {
	a := newSSAdapter("http://unused", "A", "B")
	first := a.envelope("clip.wav").Start.Param.Request.TokenID
	second := a.envelope("clip.wav").Start.Param.Request.TokenID
	assert.NotEqual(t, first, second)
}

func TestSpeechSuperMissingFields(t *testing.T) {
	srv := newVendorServer(t, jsonHandler(http.StatusOK, `{"result":{}}`))
	result, err := newSSAdapter(srv.URL, "A", "B").Assess(context.Background(), newClip("a.wav", wavBytes), "q")
	require.NoError(t, err)
	assert.Equal(t, models.ScoreUnavailable, result.Score)
	assert.Equal(t, models.TranscriptUnavailable, result.Transcript)
	assert.Equal(t, "Pronunciation Score: N/A, Fluency: N/A.", result.Feedback)
}

func TestSpeechSuperNonStringRecognition(t *testing.T) {
	srv := newVendorServer(t, jsonHandler(http.StatusOK, `{"result":{"overall":70,"recognition":["hello","world"],"pronunciation":{"score":68}}}`))
	result, err := newSSAdapter(srv.URL, "A", "B").Assess(context.Background(), newClip("a.wav", wavBytes), "q")
	require.NoError(t, err)
	assert.Equal(t, `["hello","world"]`, result.Transcript)
	assert.Equal(t, `Pronunciation Score: {"score":68}, Fluency: N/A.`, result.Feedback)
}

func TestSpeechSuperErrors(t *testing.T) {
	t.Run("missing secret makes no call", func(t *testing.T) {
		srv := newVendorServer(t, jsonHandler(http.StatusOK, `{}`))
		for _, keys := range [][2]string{{"A", ""}, {"", "B"}, {"", ""}} {
			_, err := newSSAdapter(srv.URL, keys[0], keys[1]).Assess(context.Background(), newClip("a.wav", wavBytes), "q")
			require.Error(t, err)
			assert.True(t, IsKind(err, KindConfig))
		}
		assert.Zero(t, srv.calls.Load())
	})

	t.Run("error embedded in 200 response", func(t *testing.T) {
		srv := newVendorServer(t, jsonHandler(http.StatusOK, `{"errId":41030,"error":"appKey invalid","tokenId":"token-1"}`))
		_, err := newSSAdapter(srv.URL, "A", "B").Assess(context.Background(), newClip("a.wav", wavBytes), "q")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindLogical))
		assert.Contains(t, err.Error(), "appKey invalid")
		assert.Contains(t, err.Error(), "41030")
	})

	t.Run("errId without message", func(t *testing.T) {
		srv := newVendorServer(t, jsonHandler(http.StatusOK, `{"errId":20009}`))
		_, err := newSSAdapter(srv.URL, "A", "B").Assess(context.Background(), newClip("a.wav", wavBytes), "q")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindLogical))
	})

	t.Run("http error", func(t *testing.T) {
		srv := newVendorServer(t, jsonHandler(http.StatusBadGateway, `bad gateway`))
		_, err := newSSAdapter(srv.URL, "A", "B").Assess(context.Background(), newClip("a.wav", wavBytes), "q")
		require.Error(t, err)
		assert.True(t, IsKind(err, KindStatus))
		assert.Contains(t, err.Error(), "502")
	})
}
