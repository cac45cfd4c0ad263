package tts

import (
	"log/slog"
	"time"
)

// providerConfig is the resolved configuration of one provider instance.
type providerConfig struct {
	apiKey        string
	baseURL       string
	voice         string
	model         string
	format        Encoding
	voiceSettings VoiceSettings

	timeout time.Duration
	retry   retryPolicy

	logger *slog.Logger
}

// retryPolicy retries 429 and 5xx answers with linear backoff.
type retryPolicy struct {
	attempts int // retries after the first request
	backoff  time.Duration
}

// Option configures a provider.
type Option func(*providerConfig)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option { return func(c *providerConfig) { c.apiKey = key } }

// WithBaseURL overrides the API base URL, e.g. for a recording proxy.
func WithBaseURL(url string) Option { return func(c *providerConfig) { c.baseURL = url } }

// WithVoice sets the voice: a preset name or a raw provider voice ID.
func WithVoice(voice string) Option { return func(c *providerConfig) { c.voice = voice } }

// WithModel sets the model ID.
func WithModel(model string) Option { return func(c *providerConfig) { c.model = model } }

// WithOutputFormat sets the PCM format requested from ElevenLabs.
// OpenAI always answers 24 kHz and ignores it.
func WithOutputFormat(f Encoding) Option { return func(c *providerConfig) { c.format = f } }

// WithVoiceSettings sets ElevenLabs voice characteristics.
func WithVoiceSettings(s VoiceSettings) Option {
	return func(c *providerConfig) { c.voiceSettings = s }
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option { return func(c *providerConfig) { c.timeout = d } }

// WithRetry sets how many times a rate-limited or failed request is
// retried, and the backoff step between attempts.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *providerConfig) { c.retry = retryPolicy{attempts: attempts, backoff: backoff} }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(c *providerConfig) { c.logger = l } }

// Show lines are short, so a slow answer is better retried than waited on.
const (
	defaultTimeout = 30 * time.Second
	defaultRetries = 2
	defaultBackoff = 200 * time.Millisecond
)

func elevenLabsDefaults() providerConfig {
	return providerConfig{
		baseURL:       elevenLabsBaseURL,
		voice:         DefaultElevenLabsVoice,
		model:         ModelTurboV2_5,
		format:        EncodingPCM16,
		voiceSettings: DefaultVoiceSettings(),
		timeout:       defaultTimeout,
		retry:         retryPolicy{attempts: defaultRetries, backoff: defaultBackoff},
	}
}

func openAIDefaults() providerConfig {
	return providerConfig{
		baseURL: openAIBaseURL,
		voice:   VoiceShimmer,
		model:   ModelTTS1,
		format:  EncodingPCM24,
		timeout: defaultTimeout,
		retry:   retryPolicy{attempts: defaultRetries, backoff: defaultBackoff},
	}
}

// resolve applies opts over base. Empty voice or base URL fall back to
// the provider defaults; a missing API key is an error.
func resolve(base providerConfig, opts []Option) (providerConfig, error) {
	c := base
	for _, opt := range opts {
		opt(&c)
	}
	if c.voice == "" {
		c.voice = base.voice
	}
	if c.baseURL == "" {
		c.baseURL = base.baseURL
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.apiKey == "" {
		return c, ErrNoAPIKey
	}
	return c, nil
}
