package camera

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// MaxGrabFailures is how many consecutive failed grabs end a Run.
const MaxGrabFailures = 30

// Sink receives encoded frames. The hub implements it.
type Sink interface {
	Broadcast(frame []byte)
}

// Source reads frames from the configured device at the configured rate
// and hands them to a Sink.
type Source struct {
	manager *Manager
	open    Opener
	logger  *slog.Logger
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithOpener replaces the device opener.
func WithOpener(o Opener) SourceOption {
	return func(s *Source) { s.open = o }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) SourceOption {
	return func(s *Source) { s.logger = l }
}

// NewSource creates a source driven by m's configuration.
func NewSource(m *Manager, opts ...SourceOption) *Source {
	s := &Source{
		manager: m,
		open:    OpenDevice,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "camera")
	return s
}

// Run captures until ctx is cancelled or the device stops producing
// frames. Changing device, size or rate in the Manager reopens the
// device; changing quality applies to the next frame.
func (s *Source) Run(ctx context.Context, sink Sink) error {
	cfg := s.manager.Config()
	grabber, err := s.open(cfg)
	if err != nil {
		return err
	}
	defer func() { grabber.Close() }()

	s.logger.Info("camera ready", "device", cfg.Device, "width", cfg.Width, "height", cfg.Height, "fps", cfg.FPS)

	ticker := time.NewTicker(frameInterval(cfg.FPS))
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("camera stopped", "device", cfg.Device)
			return nil
		case <-ticker.C:
		}

		if next := s.manager.Config(); next != cfg {
			if !next.sameStream(cfg) {
				grabber.Close()
				if grabber, err = s.open(next); err != nil {
					// Keep a closable value for the deferred Close.
					grabber = closedGrabber{}
					return fmt.Errorf("reopen camera: %w", err)
				}
				deviceReopens.Inc()
				s.logger.Info("camera reopened", "device", next.Device, "width", next.Width, "height", next.Height, "fps", next.FPS)
			}
			if next.FPS != cfg.FPS {
				ticker.Reset(frameInterval(next.FPS))
			}
			cfg = next
		}

		frame, err := grabber.Grab(cfg.Quality)
		if err != nil {
			grabFailures.Inc()
			failures++
			s.logger.Warn("frame grab failed", "device", cfg.Device, "error", err, "consecutive", failures)
			if failures >= MaxGrabFailures {
				return fmt.Errorf("%s: %w", cfg.Device, err)
			}
			continue
		}
		failures = 0

		framesCaptured.Inc()
		sink.Broadcast(frame)
	}
}

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}

type closedGrabber struct{}

func (closedGrabber) Grab(int) ([]byte, error) { return nil, ErrNoFrames }
func (closedGrabber) Close() error             { return nil }
