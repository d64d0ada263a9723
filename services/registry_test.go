package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speecheval/config"
)

func TestParseVendorID(t *testing.T) {
	for _, s := range []string{"lc", "sa", "ss", " ss "} {
		_, err := ParseVendorID(s)
		assert.NoError(t, err, s)
	}
	for _, s := range []string{"", "LC", "xx", "speechace"} {
		_, err := ParseVendorID(s)
		assert.Error(t, err, s)
	}
}

func TestNewRegistry(t *testing.T) {
	cfg := config.Default().Vendors
	reg := NewRegistry(cfg, WithClock(func() time.Time { return time.Unix(1, 0) }))

	lc, ok := reg.Lookup(VendorLanguageConfidence)
	require.True(t, ok)
	assert.IsType(t, &LanguageConfidenceAdapter{}, lc)

	sa, ok := reg.Lookup(VendorSpeechAce)
	require.True(t, ok)
	assert.IsType(t, &SpeechAceAdapter{}, sa)

	ss, ok := reg.Lookup(VendorSpeechSuper)
	require.True(t, ok)
	assert.IsType(t, &SpeechSuperAdapter{}, ss)
	assert.Equal(t, "1", ss.(*SpeechSuperAdapter).envelope("a.wav").Connect.Param.App.Timestamp)

	assert.Equal(t, 30*time.Second, lc.(*LanguageConfidenceAdapter).client.Timeout)

	_, ok = reg.Lookup(VendorID("zz"))
	assert.False(t, ok)
}

func TestRegistrySharedClient(t *testing.T) {
	srv := newVendorServer(t, jsonHandler(http.StatusOK, `{"overall":{"overall_score":1}}`))
	cfg := config.Default().Vendors
	cfg.LanguageConfidence.Endpoint = srv.URL
	cfg.LanguageConfidence.APIKey = "k"

	client := &http.Client{Timeout: time.Second}
	reg := NewRegistry(cfg, WithHTTPClient(client))
	lc, _ := reg.Lookup(VendorLanguageConfidence)
	assert.Same(t, client, lc.(*LanguageConfidenceAdapter).client)

	result, err := lc.Assess(context.Background(), newClip("a.wav", wavBytes), "")
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Score)
}
