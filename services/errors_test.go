package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestVendorErrorMessages(t *testing.T) {
	assert.Equal(t, "SpeechAce: missing key", configError("SpeechAce", "missing key").Error())

	err := transportError("SpeechSuper", errors.New("connection refused"))
	assert.Equal(t, "SpeechSuper: failed to reach service: connection refused", err.Error())

	err = statusError("Language Confidence", 503, []byte(strings.Repeat("x", 300)))
	assert.Contains(t, err.Error(), "(HTTP 503)")
	assert.Less(t, len(err.Error()), 300)

	err = statusError("SpeechAce", 502, []byte(strings.Repeat("é", 150)))
	assert.True(t, utf8.ValidString(err.Error()))
	assert.Contains(t, err.Error(), "(HTTP 502)")
}

func TestIsKindUnwraps(t *testing.T) {
	err := fmt.Errorf("assess: %w", logicalError("SpeechSuper", "bad token"))
	assert.True(t, IsKind(err, KindLogical))
	assert.False(t, IsKind(err, KindStatus))
	assert.False(t, IsKind(errors.New("plain"), KindLogical))

	inner := errors.New("eof")
	assert.ErrorIs(t, decodeError("SpeechAce", inner), inner)
}
