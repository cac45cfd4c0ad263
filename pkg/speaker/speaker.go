// Package speaker plays robot audio on the host sound card. It implements
// robot.SpeechChannel so a show can be rehearsed without the robot.
package speaker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/google/uuid"

	"github.com/teslashibe/go-g1/pkg/robot"
	"github.com/teslashibe/go-g1/pkg/tts"
	"github.com/teslashibe/go-g1/pkg/wav"
)

// ErrNoSynthesizer is returned by Speak when no synthesizer is configured.
var ErrNoSynthesizer = errors.New("speaker: no synthesizer for speak")

// Device creates players for 16 kHz mono PCM16 streams.
type Device interface {
	NewPlayer(r io.Reader) Player
}

// Player is one playing stream.
type Player interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(v float64)
	Close() error
}

// Speaker is a SpeechChannel backed by a local audio device.
type Speaker struct {
	device Device
	synth  tts.Synthesizer
	logger *slog.Logger

	mu     sync.Mutex
	volume float64
	active map[string]Player
}

// Option configures a Speaker.
type Option func(*Speaker)

// WithSynthesizer enables Speak through a host-side TTS provider.
func WithSynthesizer(s tts.Synthesizer) Option {
	return func(sp *Speaker) {
		sp.synth = s
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(sp *Speaker) {
		sp.logger = l
	}
}

// New creates a speaker on device.
func New(device Device, opts ...Option) *Speaker {
	s := &Speaker{
		device: device,
		logger: slog.Default(),
		volume: 1,
		active: make(map[string]Player),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "speaker")
	return s
}

var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

// Open creates a speaker on the default sound card. The audio context is
// process-wide; later calls share it.
func Open(opts ...Option) (*Speaker, error) {
	otoOnce.Do(func() {
		var ready chan struct{}
		otoCtx, ready, otoErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   wav.SampleRate,
			ChannelCount: wav.Channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if otoErr == nil {
			<-ready
		}
	})
	if otoErr != nil {
		return nil, &robot.InitError{Endpoint: "local audio device", Err: otoErr}
	}
	return New(otoDevice{otoCtx}, opts...), nil
}

// Speak synthesizes text on the host and starts playing it.
func (s *Speaker) Speak(ctx context.Context, text string, _ robot.Language) error {
	if s.synth == nil {
		return &robot.CommandError{Channel: "speech", Command: "tts", Err: ErrNoSynthesizer}
	}
	res, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return &robot.CommandError{Channel: "speech", Command: "tts", Err: err}
	}
	audio, err := wav.Decode(res)
	if err != nil {
		return &robot.CommandError{Channel: "speech", Command: "tts", Err: err}
	}
	return s.Play(ctx, "tts-"+uuid.NewString(), audio.PCM)
}

// Play starts pcm under clipID and returns immediately, like the robot.
// A clip already playing under the same id is replaced.
func (s *Speaker) Play(_ context.Context, clipID string, pcm []byte) error {
	p := s.device.NewPlayer(bytes.NewReader(pcm))

	s.mu.Lock()
	s.reapLocked()
	if old, ok := s.active[clipID]; ok {
		old.Pause()
		_ = old.Close()
	}
	p.SetVolume(s.volume)
	s.active[clipID] = p
	p.Play()
	s.mu.Unlock()

	s.logger.Debug("playing", "clip", clipID, "bytes", len(pcm))
	return nil
}

// Stop ends clipID. Stopping an unknown clip is not an error.
func (s *Speaker) Stop(_ context.Context, clipID string) error {
	s.mu.Lock()
	p, ok := s.active[clipID]
	delete(s.active, clipID)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	p.Pause()
	if err := p.Close(); err != nil {
		return &robot.CommandError{Channel: "speech", Command: "stop", Err: err}
	}
	return nil
}

// SetVolume sets the volume of current and future clips.
func (s *Speaker) SetVolume(_ context.Context, percent int) error {
	percent = max(0, min(100, percent))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = float64(percent) / 100
	for _, p := range s.active {
		p.SetVolume(s.volume)
	}
	return nil
}

// Playing returns the ids of clips that are still sounding.
func (s *Speaker) Playing() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reapLocked()
	ids := make([]string, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}
	return ids
}

// reapLocked closes players that ran out of audio without a Stop.
func (s *Speaker) reapLocked() {
	for id, p := range s.active {
		if p.IsPlaying() {
			continue
		}
		delete(s.active, id)
		if err := p.Close(); err != nil {
			s.logger.Warn("closing finished clip", "clip", id, "error", err)
		}
	}
}

// otoDevice adapts an oto context to Device.
type otoDevice struct {
	ctx *oto.Context
}

func (d otoDevice) NewPlayer(r io.Reader) Player {
	return d.ctx.NewPlayer(r)
}

var _ robot.SpeechChannel = (*Speaker)(nil)
