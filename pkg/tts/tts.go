// Package tts turns show text into waveforms the robot can play.
//
// Providers (ElevenLabs, OpenAI, or a Chain of both) return raw PCM.
// A Voice wraps a Provider, converts its output to the robot's
// 16 kHz mono PCM16 playback format and hands back a wav.Resource,
// optionally through an on-disk Cache so rehearsed lines are not
// re-synthesized on show day.
//
//	provider, _ := tts.NewElevenLabs(
//	    tts.WithAPIKey(os.Getenv("ELEVENLABS_API_KEY")),
//	    tts.WithVoice("charlotte"),
//	)
//	voice := tts.NewVoice(provider)
//	res, _ := voice.Synthesize(ctx, "Hello, welcome to the airshow!")
package tts

import (
	"context"
	"time"

	"github.com/teslashibe/go-g1/pkg/wav"
)

// Provider is a text-to-speech backend.
type Provider interface {
	// Synthesize converts text to a complete PCM buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// Synthesizer produces a playable waveform for an utterance.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (wav.Resource, error)
}

// AudioResult is a complete synthesis result.
type AudioResult struct {
	// PCM is little-endian signed 16-bit audio.
	PCM []byte

	Format AudioFormat

	// CharCount is the number of characters synthesized.
	CharCount int

	// Latency is the request round trip.
	Latency time.Duration
}

// Duration returns the playback length of the PCM.
func (r *AudioResult) Duration() time.Duration {
	bytesPerSecond := r.Format.SampleRate * r.Format.Channels * 2
	if bytesPerSecond <= 0 {
		return 0
	}
	return time.Duration(len(r.PCM)) * time.Second / time.Duration(bytesPerSecond)
}

// AudioFormat describes raw PCM16 output.
type AudioFormat struct {
	Encoding   Encoding
	SampleRate int
	Channels   int
}

// Encoding names a provider PCM output format.
type Encoding string

const (
	EncodingPCM16 Encoding = "pcm_16000" // 16kHz mono PCM16, the robot's native rate
	EncodingPCM22 Encoding = "pcm_22050"
	EncodingPCM24 Encoding = "pcm_24000" // OpenAI "pcm" output
	EncodingPCM44 Encoding = "pcm_44100"
)

// VoiceSettings controls ElevenLabs voice characteristics.
type VoiceSettings struct {
	// Stability controls voice consistency (0.0-1.0).
	Stability float64

	// SimilarityBoost controls closeness to the source voice (0.0-1.0).
	SimilarityBoost float64

	// Style controls style exaggeration (0.0-1.0).
	Style float64

	// SpeakerBoost enhances clarity; useful on a loud show floor.
	SpeakerBoost bool
}

// DefaultVoiceSettings returns the settings used at shows.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
		Style:           0.0,
		SpeakerBoost:    true,
	}
}

// SampleRateFromEncoding returns the sample rate of a PCM encoding.
func SampleRateFromEncoding(enc Encoding) int {
	switch enc {
	case EncodingPCM16:
		return 16000
	case EncodingPCM22:
		return 22050
	case EncodingPCM44:
		return 44100
	default:
		return 24000
	}
}
