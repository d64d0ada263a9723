package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"
)

// DefaultAudioFormat is sent when the filename has no supported extension.
const DefaultAudioFormat = "webm"

// AudioClip is an uploaded recording. Reader may already have been read by the
// caller; adapters always rewind it first.
type AudioClip struct {
	Filename    string
	ContentType string
	Reader      io.ReadSeeker
}

func (a AudioClip) bytes() ([]byte, error) {
	if a.Reader == nil {
		return nil, fmt.Errorf("audio clip has no data")
	}
	if _, err := a.Reader.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind audio: %w", err)
	}
	data, err := io.ReadAll(a.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	return data, nil
}

// audioFormat returns the lower-cased filename extension when it is in
// supported, DefaultAudioFormat otherwise.
func audioFormat(filename string, supported map[string]bool) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if supported[ext] {
		return ext
	}
	return DefaultAudioFormat
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// createFilePart is multipart.Writer.CreateFormFile with a caller-chosen content type.
func createFilePart(w *multipart.Writer, field, filename, contentType string) (io.Writer, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	return w.CreatePart(h)
}
