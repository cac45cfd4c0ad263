package robot

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/teslashibe/go-g1/internal/httpc"
)

// PlayChunkSize is the largest PCM slice sent in one play request
// (3 s of 16 kHz mono PCM16).
const PlayChunkSize = 96000

// DefaultTimeout bounds every bridge call.
const DefaultTimeout = 10 * time.Second

// reply is the bridge daemon's acknowledgement.
type reply struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// HTTPController drives the robot through the bridge daemon's HTTP API.
// It implements SpeechChannel, MotionChannel and StatusChecker.
type HTTPController struct {
	BaseURL string

	client *http.Client
	logger *slog.Logger
}

// HTTPOption configures an HTTPController.
type HTTPOption func(*HTTPController)

// WithHTTPClient overrides the HTTP client (and with it the call timeout).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPController) {
		h.client = c
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) HTTPOption {
	return func(h *HTTPController) {
		h.logger = l
	}
}

// NewHTTPController creates a controller for the bridge at baseURL
// (e.g. "http://192.168.123.164:8000").
func NewHTTPController(baseURL string, opts ...HTTPOption) *HTTPController {
	h := &HTTPController{
		BaseURL: baseURL,
		client:  httpc.NewClient(DefaultTimeout),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "robot.http")
	return h
}

// Connect creates a controller and verifies the bridge answers.
// Failure is returned as *InitError.
func Connect(ctx context.Context, baseURL string, opts ...HTTPOption) (*HTTPController, error) {
	h := NewHTTPController(baseURL, opts...)

	state, err := h.DaemonStatus(ctx)
	if err != nil {
		return nil, &InitError{Endpoint: baseURL, Err: err}
	}
	h.logger.Info("connected to robot bridge", "url", baseURL, "state", state)
	return h, nil
}

// DaemonStatus returns the bridge daemon state.
func (h *HTTPController) DaemonStatus(ctx context.Context) (string, error) {
	var status struct {
		State string `json:"state"`
	}
	if err := httpc.GetJSON(ctx, h.client, h.BaseURL+"/api/daemon/status", &status); err != nil {
		return "", fmt.Errorf("daemon status: %w", err)
	}
	return status.State, nil
}

// Speak sends text to the on-robot TTS engine.
func (h *HTTPController) Speak(ctx context.Context, text string, lang Language) error {
	return h.post(ctx, "speech", "tts", "/api/audio/tts", map[string]any{
		"text":       text,
		"speaker_id": int(lang),
	})
}

// Play streams PCM to the robot speaker in PlayChunkSize pieces under one
// stream id. It returns once the last chunk is acknowledged.
func (h *HTTPController) Play(ctx context.Context, clipID string, pcm []byte) error {
	streamID := strconv.FormatInt(time.Now().UnixMilli(), 10)

	for offset := 0; offset < len(pcm); offset += PlayChunkSize {
		end := min(offset+PlayChunkSize, len(pcm))
		err := h.post(ctx, "speech", "play", "/api/audio/play", map[string]any{
			"app_name":  clipID,
			"stream_id": streamID,
			"pcm":       base64.StdEncoding.EncodeToString(pcm[offset:end]),
		})
		if err != nil {
			return err
		}
	}

	h.logger.Debug("clip streamed", "clip", clipID, "bytes", len(pcm))
	return nil
}

// Stop ends playback of clipID.
func (h *HTTPController) Stop(ctx context.Context, clipID string) error {
	return h.post(ctx, "speech", "stop", "/api/audio/stop", map[string]any{
		"app_name": clipID,
	})
}

// SetVolume sets the speaker volume, clamped to 0-100.
func (h *HTTPController) SetVolume(ctx context.Context, percent int) error {
	percent = max(0, min(100, percent))
	return h.post(ctx, "speech", "volume", "/api/audio/volume", map[string]any{
		"volume": percent,
	})
}

// ExecuteAction runs a built-in arm action.
func (h *HTTPController) ExecuteAction(ctx context.Context, actionID int) error {
	return h.post(ctx, "motion", "action", "/api/arm/action", map[string]any{
		"action_id": actionID,
	})
}

// ExecuteCustom runs a named custom motion.
func (h *HTTPController) ExecuteCustom(ctx context.Context, name string) error {
	return h.post(ctx, "motion", "custom", "/api/arm/custom", map[string]any{
		"name": name,
	})
}

// post sends one bridge command and maps failures to *CommandError.
func (h *HTTPController) post(ctx context.Context, channel, command, path string, payload map[string]any) error {
	var ack reply
	if err := httpc.PostJSON(ctx, h.client, h.BaseURL+path, payload, &ack); err != nil {
		return &CommandError{Channel: channel, Command: command, Err: err}
	}
	if ack.Code != 0 {
		msg := ack.Message
		if msg == "" {
			msg = "no message"
		}
		return &CommandError{
			Channel: channel,
			Command: command,
			Code:    ack.Code,
			Err:     fmt.Errorf("%w: %s", ErrRejected, msg),
		}
	}
	return nil
}
