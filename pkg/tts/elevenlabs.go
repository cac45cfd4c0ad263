package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	elevenLabsBaseURL  = "https://api.elevenlabs.io/v1"
	providerElevenLabs = "elevenlabs"
)

// ElevenLabs model IDs.
const (
	ModelTurboV2_5      = "eleven_turbo_v2_5" // lowest latency, English
	ModelFlashV2_5      = "eleven_flash_v2_5"
	ModelMultilingualV2 = "eleven_multilingual_v2"
)

// ElevenLabs synthesizes through the ElevenLabs text-to-speech API and
// asks for raw PCM so no decoder is needed.
type ElevenLabs struct {
	cfg providerConfig
	api *apiClient
}

// NewElevenLabs creates an ElevenLabs provider. WithVoice accepts a
// preset name from ElevenLabsVoices or a raw voice ID.
func NewElevenLabs(opts ...Option) (*ElevenLabs, error) {
	cfg, err := resolve(elevenLabsDefaults(), opts)
	if err != nil {
		return nil, err
	}
	cfg.voice = ResolveElevenLabsVoice(cfg.voice)

	headers := http.Header{}
	headers.Set("xi-api-key", cfg.apiKey)
	headers.Set("Accept", "audio/pcm")

	return &ElevenLabs{
		cfg: cfg,
		api: newAPIClient(providerElevenLabs, cfg, headers, decodeElevenLabsError),
	}, nil
}

func (e *ElevenLabs) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, WrapError(providerElevenLabs, ErrEmptyText)
	}
	start := time.Now()

	vs := e.cfg.voiceSettings
	path := "/text-to-speech/" + url.PathEscape(e.cfg.voice) + "?output_format=" + string(e.cfg.format)
	pcm, err := e.api.synthesize(ctx, path, map[string]any{
		"text":     text,
		"model_id": e.cfg.model,
		"voice_settings": map[string]any{
			"stability":         vs.Stability,
			"similarity_boost":  vs.SimilarityBoost,
			"style":             vs.Style,
			"use_speaker_boost": vs.SpeakerBoost,
		},
	})
	if err != nil {
		return nil, err
	}

	res := &AudioResult{
		PCM:       pcm,
		Format:    AudioFormat{Encoding: e.cfg.format, SampleRate: SampleRateFromEncoding(e.cfg.format), Channels: 1},
		CharCount: len(text),
		Latency:   time.Since(start),
	}
	e.api.logger.Debug("synthesized", "chars", res.CharCount, "bytes", len(pcm), "latency", res.Latency, "model", e.cfg.model)
	return res, nil
}

// Health validates the API key against the user endpoint.
func (e *ElevenLabs) Health(ctx context.Context) error { return e.api.ping(ctx, "/user") }

func (e *ElevenLabs) Close() error {
	e.api.close()
	return nil
}

// VoiceID returns the resolved voice ID.
func (e *ElevenLabs) VoiceID() string { return e.cfg.voice }

func decodeElevenLabsError(body []byte) (string, string) {
	var r struct {
		Detail struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"detail"`
	}
	if json.Unmarshal(body, &r) != nil {
		return "", ""
	}
	return r.Detail.Status, r.Detail.Message
}

var _ Provider = (*ElevenLabs)(nil)
