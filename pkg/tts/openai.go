package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const (
	openAIBaseURL  = "https://api.openai.com/v1"
	providerOpenAI = "openai"
)

// OpenAI voices.
const (
	VoiceAlloy   = "alloy"
	VoiceEcho    = "echo"
	VoiceNova    = "nova"
	VoiceOnyx    = "onyx"
	VoiceShimmer = "shimmer"
)

// OpenAI models.
const (
	ModelTTS1   = "tts-1"
	ModelTTS1HD = "tts-1-hd"
)

// OpenAI synthesizes through the OpenAI speech endpoint. The "pcm"
// response format is always 24 kHz mono PCM16.
type OpenAI struct {
	cfg providerConfig
	api *apiClient
}

func NewOpenAI(opts ...Option) (*OpenAI, error) {
	cfg, err := resolve(openAIDefaults(), opts)
	if err != nil {
		return nil, err
	}
	cfg.format = EncodingPCM24

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+cfg.apiKey)

	return &OpenAI{
		cfg: cfg,
		api: newAPIClient(providerOpenAI, cfg, headers, decodeOpenAIError),
	}, nil
}

func (o *OpenAI) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, WrapError(providerOpenAI, ErrEmptyText)
	}
	start := time.Now()

	pcm, err := o.api.synthesize(ctx, "/audio/speech", map[string]any{
		"model":           o.cfg.model,
		"voice":           o.cfg.voice,
		"input":           text,
		"response_format": "pcm",
	})
	if err != nil {
		return nil, err
	}

	res := &AudioResult{
		PCM:       pcm,
		Format:    AudioFormat{Encoding: EncodingPCM24, SampleRate: 24000, Channels: 1},
		CharCount: len(text),
		Latency:   time.Since(start),
	}
	o.api.logger.Debug("synthesized", "chars", res.CharCount, "bytes", len(pcm), "latency", res.Latency, "voice", o.cfg.voice)
	return res, nil
}

// Health lists models, which fails fast on a bad key.
func (o *OpenAI) Health(ctx context.Context) error { return o.api.ping(ctx, "/models") }

func (o *OpenAI) Close() error {
	o.api.close()
	return nil
}

func (o *OpenAI) VoiceID() string { return o.cfg.voice }

func decodeOpenAIError(body []byte) (string, string) {
	var r struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &r) != nil {
		return "", ""
	}
	return r.Error.Code, r.Error.Message
}

var _ Provider = (*OpenAI)(nil)
