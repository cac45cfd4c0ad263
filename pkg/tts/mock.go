package tts

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Mock is a scriptable Provider for tests. The zero value fails every
// request; NewMock answers with silence.
type Mock struct {
	// SynthesizeFunc answers Synthesize when set.
	SynthesizeFunc func(ctx context.Context, text string) (*AudioResult, error)
	// HealthErr is returned by Health.
	HealthErr error

	mu     sync.Mutex
	texts  []string
	closed bool
}

// NewMock returns a mock producing 20 ms of 16 kHz silence per character.
func NewMock() *Mock {
	return &Mock{
		SynthesizeFunc: func(_ context.Context, text string) (*AudioResult, error) {
			return Silence(text, time.Duration(len(text))*20*time.Millisecond), nil
		},
	}
}

// Failing returns a mock whose Synthesize and Health both fail with err.
func Failing(err error) *Mock {
	return &Mock{
		SynthesizeFunc: func(context.Context, string) (*AudioResult, error) { return nil, err },
		HealthErr:      err,
	}
}

// Silence returns d of 16 kHz mono silence attributed to text.
func Silence(text string, d time.Duration) *AudioResult {
	return &AudioResult{
		PCM:       make([]byte, int(d.Seconds()*16000)*2),
		Format:    AudioFormat{Encoding: EncodingPCM16, SampleRate: 16000, Channels: 1},
		CharCount: len(text),
	}
}

func (m *Mock) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.SynthesizeFunc == nil {
		return nil, WrapError("mock", ErrProviderUnavailable)
	}
	return m.SynthesizeFunc(ctx, text)
}

func (m *Mock) Health(context.Context) error { return m.HealthErr }

func (m *Mock) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Texts returns every text passed to Synthesize, in order.
func (m *Mock) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.texts)
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ Provider = (*Mock)(nil)
