package tts

import (
	"context"
	"log/slog"

	"github.com/teslashibe/go-g1/pkg/wav"
)

// Voice implements Synthesizer on top of a Provider. Output is always
// resampled to the robot's playback format and wrapped in a WAV header.
type Voice struct {
	provider Provider
	cache    *Cache
	logger   *slog.Logger
}

// VoiceOption configures a Voice.
type VoiceOption func(*Voice)

// WithCache enables the synthesis cache.
func WithCache(c *Cache) VoiceOption {
	return func(v *Voice) {
		v.cache = c
	}
}

// WithVoiceLogger sets the structured logger.
func WithVoiceLogger(l *slog.Logger) VoiceOption {
	return func(v *Voice) {
		v.logger = l
	}
}

// NewVoice wraps provider.
func NewVoice(provider Provider, opts ...VoiceOption) *Voice {
	v := &Voice{
		provider: provider,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With("component", "tts.voice")
	return v
}

// Synthesize returns a 16 kHz mono WAV resource for text.
func (v *Voice) Synthesize(ctx context.Context, text string) (wav.Resource, error) {
	if v.cache != nil {
		if data, ok := v.cache.Get(text); ok {
			return wav.FromBytes(data), nil
		}
	}

	result, err := v.provider.Synthesize(ctx, text)
	if err != nil {
		return wav.Resource{}, err
	}

	pcm := result.PCM
	if result.Format.SampleRate != wav.SampleRate || result.Format.Channels != wav.Channels {
		pcm = wav.ToPlayback(pcm, result.Format.SampleRate, result.Format.Channels)
	}
	data := wav.Encode(pcm, wav.SampleRate, wav.Channels)

	v.logger.Debug("utterance ready",
		"chars", result.CharCount,
		"source_rate", result.Format.SampleRate,
		"duration", result.Duration(),
	)

	if v.cache != nil {
		v.cache.Put(text, data)
	}
	return wav.FromBytes(data), nil
}

// Close closes the underlying provider.
func (v *Voice) Close() error {
	return v.provider.Close()
}

// Verify Voice implements Synthesizer at compile time.
var _ Synthesizer = (*Voice)(nil)
