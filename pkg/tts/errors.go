package tts

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNoAPIKey            = errors.New("tts: API key required")
	ErrEmptyText           = errors.New("tts: empty text")
	ErrEmptyAudio          = errors.New("tts: provider returned no audio")
	ErrProviderUnavailable = errors.New("tts: no providers available")
)

// APIError is a non-200 answer from a provider.
type APIError struct {
	Provider string
	Status   int
	Code     string // provider error code, e.g. "invalid_api_key"
	Message  string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tts %s: status %d", e.Provider, e.Status)
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	return b.String()
}

// Retryable reports rate limiting and server-side failures.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// ProviderError tags a transport or decoding failure with its provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string { return "tts " + e.Provider + ": " + e.Err.Error() }

func (e *ProviderError) Unwrap() error { return e.Err }

// WrapError tags err with provider. A nil err stays nil.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
