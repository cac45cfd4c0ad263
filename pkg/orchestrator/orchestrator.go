// Package orchestrator drives the robot's speech and arm channels.
//
// It runs three primitives (speak, play a waveform, run a gesture) and
// joins a speech half with a motion half into a synchronized pair: both
// start together and the pair returns once both are done.
//
// The orchestrator owns one advisory busy/idle token. Every waveform
// playback and gesture marks it Busy on entry and Idle on exit. The two
// halves of a pair both write it, so the last one to finish decides the
// value; callers use it only to decide whether to start optional actions.
//
// Started primitives are never cancelled. A playing clip is always waited
// for and stopped, even if the caller's context ends.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-g1/pkg/gesture"
	"github.com/teslashibe/go-g1/pkg/robot"
	"github.com/teslashibe/go-g1/pkg/wav"
)

// Action is one half of a synchronized pair.
type Action func(ctx context.Context) error

// Pair is a speech action and a motion action that run together.
type Pair struct {
	Speech Action
	Motion Action
}

// Decoder turns a waveform resource into PCM.
type Decoder interface {
	Decode(r wav.Resource) (wav.Audio, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(r wav.Resource) (wav.Audio, error)

// Decode calls f.
func (f DecoderFunc) Decode(r wav.Resource) (wav.Audio, error) {
	return f(r)
}

// Catalog resolves gesture names.
type Catalog interface {
	Lookup(name string) (gesture.Gesture, error)
}

// Orchestrator executes primitives and synchronized pairs.
type Orchestrator struct {
	speech  robot.SpeechChannel
	motion  robot.MotionChannel
	catalog Catalog
	decoder Decoder
	waiter  PlaybackWaiter
	logger  *slog.Logger

	state robot.StateToken
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithDecoder replaces the WAV decoder.
func WithDecoder(d Decoder) Option {
	return func(o *Orchestrator) {
		o.decoder = d
	}
}

// WithWaiter replaces the playback completion strategy.
func WithWaiter(w PlaybackWaiter) Option {
	return func(o *Orchestrator) {
		o.waiter = w
	}
}

// WithMargin sets the safety margin of the default estimated wait.
func WithMargin(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.waiter = EstimatedWait{Margin: d}
	}
}

// New creates an orchestrator. The state token starts Idle.
func New(speech robot.SpeechChannel, motion robot.MotionChannel, catalog Catalog, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		speech:  speech,
		motion:  motion,
		catalog: catalog,
		decoder: DecoderFunc(wav.Decode),
		waiter:  EstimatedWait{Margin: DefaultMargin},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("component", "orchestrator")
	return o
}

// State returns the advisory robot state.
func (o *Orchestrator) State() robot.State {
	return o.state.Load()
}

// IsIdle reports whether the advisory state reads Idle.
func (o *Orchestrator) IsIdle() bool {
	return o.state.Load() == robot.StateIdle
}

// Speak hands text to the robot's own TTS engine. The robot plays it
// asynchronously, so the state token is not touched.
func (o *Orchestrator) Speak(ctx context.Context, text string, lang robot.Language) error {
	ctx, span := tracer.Start(ctx, "speak", trace.WithAttributes(
		attribute.Int("text.length", len(text)),
		attribute.String("language", lang.String()),
	))
	defer span.End()
	start := time.Now()

	err := o.speech.Speak(ctx, text, lang)
	observe(ctx, "speak", start, err)
	if err != nil {
		fail(span, err)
		return err
	}
	o.logger.Info("speak", "text", text, "language", lang)
	return nil
}

// PlayWaveform plays w under a fresh clip id.
func (o *Orchestrator) PlayWaveform(ctx context.Context, w wav.Resource) error {
	return o.PlayClip(ctx, uuid.NewString(), w)
}

// PlayClip decodes w and plays it under clipID, blocking until the
// estimated end of playback and then stopping the clip.
//
// A waveform that cannot be decoded or is not 16 kHz mono PCM16 is logged
// and skipped: nothing is sent and nil is returned.
func (o *Orchestrator) PlayClip(ctx context.Context, clipID string, w wav.Resource) error {
	ctx, span := tracer.Start(ctx, "play waveform", trace.WithAttributes(
		attribute.String("clip.id", clipID),
	))
	defer span.End()
	start := time.Now()

	audio, err := o.decoder.Decode(w)
	if err == nil {
		err = audio.CheckFormat(wav.SampleRate, wav.Channels)
	}
	if err != nil {
		metricFormatViolations.Inc()
		metricActions.WithLabelValues("play", "skipped").Inc()
		span.AddEvent("playback skipped")
		o.logger.Error("skipping unplayable waveform", "clip", clipID, "resource", w.String(), "error", err)
		return nil
	}

	o.state.Store(robot.StateBusy)
	defer o.state.Store(robot.StateIdle)

	err = o.play(ctx, clipID, audio)
	observe(ctx, "play", start, err)
	if err != nil {
		fail(span, err)
	}
	return err
}

func (o *Orchestrator) play(ctx context.Context, clipID string, audio wav.Audio) error {
	// Stop must reach the robot even if ctx ends mid-clip.
	stopCtx := context.WithoutCancel(ctx)

	if err := o.speech.Play(ctx, clipID, audio.PCM); err != nil {
		// Earlier chunks may already be queued on the robot.
		if stopErr := o.speech.Stop(stopCtx, clipID); stopErr != nil {
			o.logger.Warn("stop after failed play", "clip", clipID, "error", stopErr)
		}
		return fmt.Errorf("play clip %s: %w", clipID, err)
	}

	o.logger.Debug("clip playing", "clip", clipID, "duration", audio.Duration())
	o.waiter.Wait(clipID, audio)

	if err := o.speech.Stop(stopCtx, clipID); err != nil {
		return fmt.Errorf("stop clip %s: %w", clipID, err)
	}
	return nil
}

// RunGesture looks up name and executes its steps in order, waiting each
// step's settle time before the next. An unknown name returns
// *gesture.UnknownError without touching the arm or the state token.
func (o *Orchestrator) RunGesture(ctx context.Context, name string) error {
	ctx, span := tracer.Start(ctx, "run gesture", trace.WithAttributes(
		attribute.String("gesture", name),
	))
	defer span.End()

	g, err := o.catalog.Lookup(name)
	if err != nil {
		metricActions.WithLabelValues("gesture", "error").Inc()
		fail(span, err)
		return err
	}

	o.state.Store(robot.StateBusy)
	defer o.state.Store(robot.StateIdle)
	start := time.Now()

	err = o.runSteps(ctx, g)
	observe(ctx, "gesture", start, err)
	if err != nil {
		fail(span, err)
		return err
	}
	o.logger.Info("gesture done", "gesture", g.Name, "elapsed", time.Since(start))
	return nil
}

func (o *Orchestrator) runSteps(ctx context.Context, g gesture.Gesture) error {
	for i, step := range g.Steps {
		var err error
		if step.IsCustom() {
			err = o.motion.ExecuteCustom(ctx, step.Custom)
		} else {
			err = o.motion.ExecuteAction(ctx, step.Action)
		}
		if err != nil {
			return fmt.Errorf("gesture %q step %d (%s): %w", g.Name, i, step, err)
		}

		if step.Settle > 0 && i < len(g.Steps)-1 {
			time.Sleep(step.Settle)
		}
	}
	return nil
}

// GestureAction returns RunGesture(name) as a pair half.
func (o *Orchestrator) GestureAction(name string) Action {
	return func(ctx context.Context) error {
		return o.RunGesture(ctx, name)
	}
}

// WaveformAction returns PlayWaveform(w) as a pair half.
func (o *Orchestrator) WaveformAction(w wav.Resource) Action {
	return func(ctx context.Context) error {
		return o.PlayWaveform(ctx, w)
	}
}

// RunSynchronized plays w and runs motion concurrently and returns when
// both are done.
func (o *Orchestrator) RunSynchronized(ctx context.Context, w wav.Resource, motion Action) error {
	return o.RunPair(ctx, Pair{Speech: o.WaveformAction(w), Motion: motion})
}

// RunPair starts both halves before waiting on either and returns once
// both have finished. The first error from either half is returned.
// A nil half is skipped.
func (o *Orchestrator) RunPair(ctx context.Context, p Pair) error {
	ctx, span := tracer.Start(ctx, "synchronized pair")
	defer span.End()
	start := time.Now()

	var g errgroup.Group
	for _, half := range []Action{p.Speech, p.Motion} {
		if half == nil {
			continue
		}
		half := half
		g.Go(func() error {
			return half(ctx)
		})
	}
	err := g.Wait()

	elapsed := time.Since(start)
	metricPairDuration.Observe(elapsed.Seconds())
	if err != nil {
		fail(span, err)
		return err
	}
	o.logger.Debug("pair done", "elapsed", elapsed)
	return nil
}

// SetVolume sets the speaker volume, clamped to 0-100.
func (o *Orchestrator) SetVolume(ctx context.Context, percent int) error {
	percent = max(0, min(100, percent))
	if err := o.speech.SetVolume(ctx, percent); err != nil {
		return err
	}
	o.logger.Info("volume set", "percent", percent)
	return nil
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
