// Package app wires the G1 rig together: actuator channels, speech
// synthesis, the gesture catalog, the orchestrator and the sequencer.
// The binaries in cmd/ differ only in what they run on top of it.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-g1/internal/config"
	"github.com/teslashibe/go-g1/internal/httpc"
	"github.com/teslashibe/go-g1/pkg/gesture"
	"github.com/teslashibe/go-g1/pkg/orchestrator"
	"github.com/teslashibe/go-g1/pkg/robot"
	"github.com/teslashibe/go-g1/pkg/sequence"
	"github.com/teslashibe/go-g1/pkg/speaker"
	"github.com/teslashibe/go-g1/pkg/tts"
	"github.com/teslashibe/go-g1/pkg/wav"
)

// App owns every component and their lifecycle.
type App struct {
	cfg      config.Config
	logger   *slog.Logger
	rehearse bool

	Speech robot.SpeechChannel
	Motion robot.MotionChannel
	Status robot.StatusChecker // nil when no bridge is connected

	Catalog      *gesture.Catalog
	Voice        tts.Synthesizer
	Orchestrator *orchestrator.Orchestrator
	Sequencer    *sequence.Sequencer

	closers []func() error
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithRehearsal plays speech on the host sound card and only logs arm
// motions, so a show can be rehearsed without the robot.
func WithRehearsal(on bool) Option {
	return func(a *App) { a.rehearse = on }
}

// WithChannels supplies actuator channels instead of connecting to the
// bridge.
func WithChannels(speech robot.SpeechChannel, motion robot.MotionChannel) Option {
	return func(a *App) {
		a.Speech = speech
		a.Motion = motion
	}
}

// WithSynthesizer supplies the speech synthesizer instead of building one
// from the TTS settings.
func WithSynthesizer(s tts.Synthesizer) Option {
	return func(a *App) { a.Voice = s }
}

// New creates an App. Nothing is connected until Init.
func New(cfg config.Config, opts ...Option) *App {
	a := &App{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "app")
	return a
}

// Init connects the actuators and builds the orchestrator and sequencer.
// A bridge that cannot be reached is returned as *robot.InitError.
func (a *App) Init(ctx context.Context) error {
	if a.Voice == nil {
		a.initVoice()
	}

	if err := a.initActuators(ctx); err != nil {
		return err
	}

	if err := a.Speech.SetVolume(ctx, a.cfg.Robot.Volume); err != nil {
		a.logger.Warn("could not set volume", "volume", a.cfg.Robot.Volume, "error", err)
	}

	catalog, err := gesture.Builtin()
	if err != nil {
		return fmt.Errorf("gesture catalog: %w", err)
	}
	if a.cfg.Gestures.File != "" {
		if err := catalog.LoadFile(a.cfg.Gestures.File); err != nil {
			return fmt.Errorf("gesture catalog: %w", err)
		}
	}
	a.Catalog = catalog

	a.Orchestrator = orchestrator.New(a.Speech, a.Motion, catalog,
		orchestrator.WithLogger(a.logger),
		orchestrator.WithMargin(a.cfg.Speech.PlaybackMargin),
	)
	a.Sequencer = sequence.New(a.Orchestrator, a.Voice, sequence.WithLogger(a.logger))

	a.logger.Info("rig ready",
		"gestures", catalog.Len(),
		"speech", a.cfg.Speech.Backend,
		"rehearse", a.rehearse,
	)
	return nil
}

// initVoice builds the TTS provider. Without one every synthesized line
// is skipped, which still lets gestures and on-robot TTS run.
func (a *App) initVoice() {
	provider, err := tts.Open(tts.Settings{
		Provider:        a.cfg.TTS.Provider,
		ElevenLabsKey:   a.cfg.TTS.ElevenLabsKey,
		ElevenLabsVoice: a.cfg.TTS.ElevenLabsVoice,
		OpenAIKey:       a.cfg.TTS.OpenAIKey,
		OpenAIVoice:     a.cfg.TTS.OpenAIVoice,
		Cooldown:        a.cfg.TTS.Cooldown,
		Logger:          a.logger,
	})
	if err != nil {
		a.logger.Warn("speech synthesis unavailable, synthesized lines will be skipped", "error", err)
		a.Voice = unavailable{err}
		return
	}

	cacheKey := a.cfg.TTS.Provider + ":" + a.cfg.TTS.ElevenLabsVoice + ":" + a.cfg.TTS.OpenAIVoice
	voice := tts.NewVoice(provider,
		tts.WithCache(tts.NewCache(cacheKey, a.cfg.TTS.CacheDir, a.logger)),
		tts.WithVoiceLogger(a.logger),
	)
	a.Voice = voice
	a.closers = append(a.closers, voice.Close)
}

func (a *App) initActuators(ctx context.Context) error {
	if a.Speech != nil && a.Motion != nil {
		return nil
	}

	if a.rehearse {
		spk, err := speaker.Open(speaker.WithSynthesizer(a.Voice), speaker.WithLogger(a.logger))
		if err != nil {
			return err
		}
		a.Speech = spk
		a.Motion = robot.NewDryRunArm(a.logger)
		return nil
	}

	bridge, err := robot.Connect(ctx, a.cfg.RobotAPIURL(),
		robot.WithHTTPClient(httpc.NewClient(a.cfg.Robot.Timeout)),
		robot.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}
	a.Status = bridge
	a.Motion = bridge
	a.Speech = bridge

	if a.cfg.Speech.Backend == "local" {
		spk, err := speaker.Open(speaker.WithSynthesizer(a.Voice), speaker.WithLogger(a.logger))
		if err != nil {
			return err
		}
		a.Speech = spk
	}
	return nil
}

// Shutdown releases providers. It is safe to call after a failed Init.
func (a *App) Shutdown() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("shutdown", "error", err)
		}
	}
	a.closers = nil
}

// unavailable is the synthesizer used when no TTS provider is configured.
type unavailable struct{ err error }

func (u unavailable) Synthesize(context.Context, string) (wav.Resource, error) {
	return wav.Resource{}, fmt.Errorf("%w: %v", tts.ErrProviderUnavailable, u.err)
}
