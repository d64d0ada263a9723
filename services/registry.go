package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"speecheval/config"
	"speecheval/models"
)

// VendorID is the apiChoice key a client uses to pick a vendor.
type VendorID string

const (
	VendorLanguageConfidence VendorID = "lc"
	VendorSpeechAce          VendorID = "sa"
	VendorSpeechSuper        VendorID = "ss"
)

// ParseVendorID validates an apiChoice value.
func ParseVendorID(s string) (VendorID, error) {
	switch id := VendorID(strings.TrimSpace(s)); id {
	case VendorLanguageConfidence, VendorSpeechAce, VendorSpeechSuper:
		return id, nil
	default:
		return "", fmt.Errorf("unknown apiChoice %q (expected lc, sa or ss)", s)
	}
}

// Assessor scores one audio clip against one prompt with a single vendor call.
type Assessor interface {
	Assess(ctx context.Context, audio AudioClip, prompt string) (*models.AssessmentResult, error)
}

// Registry maps each VendorID to its adapter.
type Registry struct {
	adapters map[VendorID]Assessor
}

type registryOptions struct {
	httpClient *http.Client
	now        func() time.Time
}

// Option customizes the adapters built by NewRegistry.
type Option func(*registryOptions)

// WithHTTPClient makes every adapter share client instead of building its own.
func WithHTTPClient(client *http.Client) Option {
	return func(o *registryOptions) { o.httpClient = client }
}

// WithClock overrides the time source used for SpeechSuper signatures.
func WithClock(now func() time.Time) Option {
	return func(o *registryOptions) { o.now = now }
}

// NewRegistry builds one adapter per vendor from cfg.
func NewRegistry(cfg config.VendorsConfig, opts ...Option) *Registry {
	o := registryOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	client := func(timeoutSeconds int) *http.Client {
		if o.httpClient != nil {
			return o.httpClient
		}
		return &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second}
	}

	return &Registry{adapters: map[VendorID]Assessor{
		VendorLanguageConfidence: NewLanguageConfidenceAdapter(cfg.LanguageConfidence, client(cfg.LanguageConfidence.TimeoutSeconds)),
		VendorSpeechAce:          NewSpeechAceAdapter(cfg.SpeechAce, client(cfg.SpeechAce.TimeoutSeconds)),
		VendorSpeechSuper:        NewSpeechSuperAdapter(cfg.SpeechSuper, client(cfg.SpeechSuper.TimeoutSeconds), o.now),
	}}
}

// NewRegistryFromAdapters is used when adapters are built elsewhere, mostly in tests.
func NewRegistryFromAdapters(adapters map[VendorID]Assessor) *Registry {
	return &Registry{adapters: adapters}
}

// Lookup returns the adapter registered for id.
func (r *Registry) Lookup(id VendorID) (Assessor, bool) {
	a, ok := r.adapters[id]
	return a, ok && a != nil
}
