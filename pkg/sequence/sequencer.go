// Package sequence runs scripted demonstrations on top of the orchestrator.
//
// A script runs in two phases. Prepare synthesizes every line first, so
// the show does not stall on the network mid-performance; a line that
// fails to synthesize is dropped (a together step then runs its gesture
// alone). Execute issues the steps strictly in order and stops at the
// first error.
package sequence

import (
	"context"
	"log/slog"
	"time"

	"github.com/teslashibe/go-g1/pkg/orchestrator"
	"github.com/teslashibe/go-g1/pkg/robot"
	"github.com/teslashibe/go-g1/pkg/tts"
	"github.com/teslashibe/go-g1/pkg/wav"
)

// Orchestrator is the subset of *orchestrator.Orchestrator a script uses.
type Orchestrator interface {
	Speak(ctx context.Context, text string, lang robot.Language) error
	PlayWaveform(ctx context.Context, w wav.Resource) error
	RunGesture(ctx context.Context, name string) error
	RunSynchronized(ctx context.Context, w wav.Resource, motion orchestrator.Action) error
	GestureAction(name string) orchestrator.Action
	IsIdle() bool
}

// Sequencer runs scripts.
type Sequencer struct {
	orch   Orchestrator
	synth  tts.Synthesizer
	logger *slog.Logger
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = l
	}
}

// New creates a sequencer.
func New(orch Orchestrator, synth tts.Synthesizer, opts ...Option) *Sequencer {
	s := &Sequencer{
		orch:   orch,
		synth:  synth,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "sequence")
	return s
}

// Prepared is a script whose lines have been synthesized.
type Prepared struct {
	Script Script

	waves map[int]wav.Resource
}

// Skipped returns the indexes of steps whose speech was dropped.
func (p *Prepared) Skipped() []int {
	var out []int
	for i, step := range p.Script.Steps {
		if step.needsSynthesis() {
			if _, ok := p.waves[i]; !ok {
				out = append(out, i)
			}
		}
	}
	return out
}

// Prepare synthesizes every line of script. Synthesis failures are logged
// and the line is dropped; only an invalid script or a cancelled context
// return an error.
func (s *Sequencer) Prepare(ctx context.Context, script Script) (*Prepared, error) {
	if err := script.Validate(); err != nil {
		return nil, err
	}

	p := &Prepared{Script: script, waves: make(map[int]wav.Resource)}
	for i, step := range script.Steps {
		switch {
		case step.Waveform != "":
			p.waves[i] = wav.FromFile(step.Waveform)
		case step.needsSynthesis():
			res, err := s.synth.Synthesize(ctx, step.Text)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				s.logger.Error("synthesis failed, dropping line", "step", i, "name", step.Label(), "error", err)
				continue
			}
			p.waves[i] = res
		}
	}

	s.logger.Info("script prepared", "script", script.Name, "steps", len(script.Steps), "lines", len(p.waves))
	return p, nil
}

// Execute runs a prepared script. The first failing step aborts the rest
// and is returned as *StepError.
func (s *Sequencer) Execute(ctx context.Context, p *Prepared) error {
	start := time.Now()
	for i, step := range p.Script.Steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Index: i, Name: step.Label(), Err: err}
		}
		if step.IfIdle && !s.orch.IsIdle() {
			s.logger.Info("robot busy, skipping step", "step", i, "name", step.Label())
			continue
		}

		s.logger.Debug("step", "index", i, "name", step.Label())
		if err := s.runStep(ctx, i, step, p); err != nil {
			s.logger.Error("step failed, aborting script", "script", p.Script.Name, "step", i, "name", step.Label(), "error", err)
			return &StepError{Index: i, Name: step.Label(), Err: err}
		}
	}

	s.logger.Info("script complete", "script", p.Script.Name, "elapsed", time.Since(start))
	return nil
}

// Run prepares and executes script.
func (s *Sequencer) Run(ctx context.Context, script Script) error {
	p, err := s.Prepare(ctx, script)
	if err != nil {
		return err
	}
	return s.Execute(ctx, p)
}

func (s *Sequencer) runStep(ctx context.Context, i int, step Step, p *Prepared) error {
	switch step.Kind {
	case KindSay:
		return s.orch.Speak(ctx, step.Text, robot.ParseLanguage(step.Language))

	case KindPlay:
		w, ok := p.waves[i]
		if !ok {
			s.logger.Warn("no audio for line, skipping", "step", i, "name", step.Label())
			return nil
		}
		return s.orch.PlayWaveform(ctx, w)

	case KindGesture:
		return s.orch.RunGesture(ctx, step.Gesture)

	case KindTogether:
		w, ok := p.waves[i]
		if !ok {
			s.logger.Warn("no audio for line, gesture only", "step", i, "name", step.Label())
			return s.orch.RunGesture(ctx, step.Gesture)
		}
		return s.orch.RunSynchronized(ctx, w, s.orch.GestureAction(step.Gesture))

	case KindPause:
		select {
		case <-time.After(step.Duration):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
