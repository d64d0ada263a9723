package utils

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactSensitiveData(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "query key",
			input: "https://api2.speechace.com/api/scoring/speech/v0.5/json?dialect=en-us&key=abc123&user_id=LND",
			want:  "https://api2.speechace.com/api/scoring/speech/v0.5/json?dialect=en-us&key=[REDACTED]&user_id=LND",
		},
		{
			name:  "json credentials",
			input: `{"appKey":"A1","secretKey": "S2","user":"x"}`,
			want:  `{"appKey":"[REDACTED]","secretKey": "[REDACTED]","user":"x"}`,
		},
		{
			name:  "header",
			input: "api-key: supersecret",
			want:  "api-key: [REDACTED]",
		},
		{
			name:  "nothing sensitive",
			input: "status 503",
			want:  "status 503",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactSensitiveData(tt.input))
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
