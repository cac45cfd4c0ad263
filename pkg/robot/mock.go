package robot

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Call records one actuator invocation.
type Call struct {
	Method string
	Arg    string // clip id, text, motion name, action id or volume
	Bytes  int    // PCM length for Play
	Time   time.Time
}

// callLog is the shared call recorder of the mocks.
type callLog struct {
	mu    sync.Mutex
	calls []Call
}

func (l *callLog) record(c Call) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c.Time = time.Now()
	l.calls = append(l.calls, c)
}

// Calls returns all recorded calls.
func (l *callLog) Calls() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Call, len(l.calls))
	copy(out, l.calls)
	return out
}

// CallCount returns how many times method was called.
func (l *callLog) CallCount(method string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Find returns the first call of method, or nil.
func (l *callLog) Find(method string) *Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.calls {
		if c.Method == method {
			return &c
		}
	}
	return nil
}

// MockSpeech implements SpeechChannel for testing.
// Function fields, when set, supply the return value of each method.
type MockSpeech struct {
	callLog

	SpeakFunc     func(ctx context.Context, text string, lang Language) error
	PlayFunc      func(ctx context.Context, clipID string, pcm []byte) error
	StopFunc      func(ctx context.Context, clipID string) error
	SetVolumeFunc func(ctx context.Context, percent int) error
}

// NewMockSpeech returns a speech mock that acknowledges everything.
func NewMockSpeech() *MockSpeech {
	return &MockSpeech{}
}

func (m *MockSpeech) Speak(ctx context.Context, text string, lang Language) error {
	m.record(Call{Method: "Speak", Arg: text})
	if m.SpeakFunc != nil {
		return m.SpeakFunc(ctx, text, lang)
	}
	return nil
}

func (m *MockSpeech) Play(ctx context.Context, clipID string, pcm []byte) error {
	m.record(Call{Method: "Play", Arg: clipID, Bytes: len(pcm)})
	if m.PlayFunc != nil {
		return m.PlayFunc(ctx, clipID, pcm)
	}
	return nil
}

func (m *MockSpeech) Stop(ctx context.Context, clipID string) error {
	m.record(Call{Method: "Stop", Arg: clipID})
	if m.StopFunc != nil {
		return m.StopFunc(ctx, clipID)
	}
	return nil
}

func (m *MockSpeech) SetVolume(ctx context.Context, percent int) error {
	m.record(Call{Method: "SetVolume", Arg: strconv.Itoa(percent)})
	if m.SetVolumeFunc != nil {
		return m.SetVolumeFunc(ctx, percent)
	}
	return nil
}

// MockArm implements MotionChannel for testing. Delay makes every command
// block like a real arm that acknowledges after the motion.
type MockArm struct {
	callLog

	Delay time.Duration
	Err   error
}

// NewMockArm returns an arm mock that acknowledges immediately.
func NewMockArm() *MockArm {
	return &MockArm{}
}

func (m *MockArm) ExecuteAction(ctx context.Context, actionID int) error {
	m.record(Call{Method: "ExecuteAction", Arg: strconv.Itoa(actionID)})
	return m.finish()
}

func (m *MockArm) ExecuteCustom(ctx context.Context, name string) error {
	m.record(Call{Method: "ExecuteCustom", Arg: name})
	return m.finish()
}

func (m *MockArm) finish() error {
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	return m.Err
}

// Verify mocks implement the channels at compile time.
var (
	_ SpeechChannel = (*MockSpeech)(nil)
	_ MotionChannel = (*MockArm)(nil)
)
