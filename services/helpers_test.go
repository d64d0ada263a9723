package services

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

var wavBytes = []byte("RIFF\x00\x00\x00\x00WA")

func newClip(filename string, data []byte) AudioClip {
	return AudioClip{Filename: filename, ContentType: "audio/wav", Reader: bytes.NewReader(data)}
}

// vendorServer is an httptest server that counts the requests it receives.
type vendorServer struct {
	*httptest.Server
	calls atomic.Int32
}

func newVendorServer(t *testing.T, handler http.HandlerFunc) *vendorServer {
	t.Helper()
	vs := &vendorServer{}
	vs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vs.calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(vs.Close)
	return vs
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
