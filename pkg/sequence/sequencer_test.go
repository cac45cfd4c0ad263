package sequence

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-g1/pkg/gesture"
	"github.com/teslashibe/go-g1/pkg/orchestrator"
	"github.com/teslashibe/go-g1/pkg/robot"
	"github.com/teslashibe/go-g1/pkg/tts"
	"github.com/teslashibe/go-g1/pkg/wav"
)

type rig struct {
	speech *robot.MockSpeech
	arm    *robot.MockArm
	voice  *tts.Mock
	seq    *Sequencer
}

func newRig(t *testing.T) *rig {
	t.Helper()
	catalog, err := gesture.Builtin()
	if err != nil {
		t.Fatal(err)
	}
	r := &rig{
		speech: robot.NewMockSpeech(),
		arm:    robot.NewMockArm(),
		voice:  tts.NewMock(),
	}
	orch := orchestrator.New(r.speech, r.arm, catalog,
		orchestrator.WithWaiter(orchestrator.WaiterFunc(func(string, wav.Audio) {})))
	r.seq = New(orch, tts.NewVoice(r.voice))
	return r
}

func TestRun_Airshow(t *testing.T) {
	r := newRig(t)

	if err := r.seq.Run(context.Background(), Airshow("Karthee")); err != nil {
		t.Fatalf("Run: %v", err)
	}

	synth := r.voice.Texts()
	if len(synth) != 4 {
		t.Fatalf("synthesized %d lines, want 4", len(synth))
	}
	if synth[0] != "Hello, Karthee, welcome to the airshow!" {
		t.Errorf("greeting = %q", synth[0])
	}
	if synth[3] != BeginText {
		t.Errorf("last line = %q", synth[3])
	}

	if n := r.speech.CallCount("Play"); n != 4 {
		t.Errorf("played %d clips, want 4", n)
	}
	if n := r.speech.CallCount("Stop"); n != 4 {
		t.Errorf("stopped %d clips, want 4", n)
	}
	if c := r.arm.Find("ExecuteAction"); c == nil || c.Arg != "26" {
		t.Errorf("expected high wave (26), got %+v", r.arm.Calls())
	}
	if c := r.arm.Find("ExecuteCustom"); c == nil || c.Arg != "left" {
		t.Errorf("expected conversational left gesture, got %+v", r.arm.Calls())
	}
}

func TestPrepare_SynthesizesBeforeAnyPlayback(t *testing.T) {
	r := newRig(t)

	synthAtFirstPlay := -1
	r.speech.PlayFunc = func(context.Context, string, []byte) error {
		if synthAtFirstPlay < 0 {
			synthAtFirstPlay = len(r.voice.Texts())
		}
		return nil
	}

	if err := r.seq.Run(context.Background(), Airshow(UnknownVisitor)); err != nil {
		t.Fatal(err)
	}
	if total := len(r.voice.Texts()); synthAtFirstPlay != total {
		t.Errorf("%d of %d lines synthesized before first playback", synthAtFirstPlay, total)
	}
}

func TestRun_SynthesisFailureDropsLineOnly(t *testing.T) {
	r := newRig(t)
	r.voice.SynthesizeFunc = func(ctx context.Context, text string) (*tts.AudioResult, error) {
		if strings.Contains(text, "Artificial Intelligence") {
			return nil, tts.WrapError("mock", errors.New("quota exceeded"))
		}
		return tts.Silence(text, 100*time.Millisecond), nil
	}

	p, err := r.seq.Prepare(context.Background(), Airshow("Karthee"))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if skipped := p.Skipped(); len(skipped) != 1 || skipped[0] != 2 {
		t.Fatalf("skipped = %v, want [2]", skipped)
	}

	if err := r.seq.Execute(context.Background(), p); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if n := r.speech.CallCount("Play"); n != 3 {
		t.Errorf("played %d clips, want 3", n)
	}
	if r.arm.Find("ExecuteCustom") == nil {
		t.Error("explain gesture should still run without its line")
	}
}

func TestRun_AbortsOnGestureError(t *testing.T) {
	r := newRig(t)
	r.arm.Err = &robot.CommandError{Channel: "motion", Command: "action", Code: 1, Err: robot.ErrRejected}

	err := r.seq.Run(context.Background(), Airshow("Karthee"))

	var se *StepError
	if !errors.As(err, &se) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if se.Index != 0 || se.Name != "greet" {
		t.Errorf("failed step = %d %q", se.Index, se.Name)
	}
	if !errors.Is(err, robot.ErrRejected) {
		t.Error("expected the actuator error to be wrapped")
	}
	// The greeting's speech half still completes; nothing after it runs.
	if n := r.speech.CallCount("Play"); n != 1 {
		t.Errorf("played %d clips, want 1", n)
	}
}

func TestRun_UnknownGestureAborts(t *testing.T) {
	r := newRig(t)
	script := Script{Name: "typo", Steps: []Step{
		Gesture("moonwalk"),
		Play("never played"),
	}}

	err := r.seq.Run(context.Background(), script)
	if !errors.Is(err, gesture.ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
	if r.speech.CallCount("Play") != 0 {
		t.Error("steps after the failure must not run")
	}
}

// fakeOrchestrator records calls in order.
type fakeOrchestrator struct {
	mu    sync.Mutex
	calls []string
	idle  bool
}

func (f *fakeOrchestrator) record(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, s)
}

func (f *fakeOrchestrator) Speak(_ context.Context, text string, lang robot.Language) error {
	f.record("speak:" + lang.String() + ":" + text)
	return nil
}

func (f *fakeOrchestrator) PlayWaveform(context.Context, wav.Resource) error {
	f.record("play")
	return nil
}

func (f *fakeOrchestrator) RunGesture(_ context.Context, name string) error {
	f.record("gesture:" + name)
	return nil
}

func (f *fakeOrchestrator) RunSynchronized(ctx context.Context, _ wav.Resource, motion orchestrator.Action) error {
	f.record("pair")
	return motion(ctx)
}

func (f *fakeOrchestrator) GestureAction(name string) orchestrator.Action {
	return func(ctx context.Context) error {
		return f.RunGesture(ctx, name)
	}
}

func (f *fakeOrchestrator) IsIdle() bool {
	return f.idle
}

func TestExecute_OrderAndIfIdle(t *testing.T) {
	orch := &fakeOrchestrator{idle: false}
	seq := New(orch, tts.NewVoice(tts.NewMock()))

	script := Script{Name: "t", Steps: []Step{
		Say("ni hao"),
		Gesture("clap").OnlyIfIdle(),
		Together("hi", "high wave"),
		Pause(10 * time.Millisecond),
		Gesture("release arm"),
	}}
	script.Steps[0].Language = "zh"

	if err := seq.Run(context.Background(), script); err != nil {
		t.Fatal(err)
	}
	want := []string{"speak:chinese:ni hao", "pair", "gesture:high wave", "gesture:release arm"}
	if strings.Join(orch.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", orch.calls, want)
	}
}

func TestExecute_CancelledBetweenSteps(t *testing.T) {
	orch := &fakeOrchestrator{idle: true}
	seq := New(orch, tts.NewVoice(tts.NewMock()))

	ctx, cancel := context.WithCancel(context.Background())
	script := Script{Name: "t", Steps: []Step{Gesture("clap"), Pause(time.Hour), Gesture("hug")}}
	p, err := seq.Prepare(ctx, script)
	if err != nil {
		t.Fatal(err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err = seq.Execute(ctx, p)
	var se *StepError
	if !errors.As(err, &se) || se.Index != 1 || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation at the pause, got %v", err)
	}
	if len(orch.calls) != 1 {
		t.Errorf("calls = %v", orch.calls)
	}
}
