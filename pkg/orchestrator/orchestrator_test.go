package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/teslashibe/go-g1/pkg/gesture"
	"github.com/teslashibe/go-g1/pkg/robot"
	"github.com/teslashibe/go-g1/pkg/wav"
)

// clip returns a WAV resource of d at the given format.
func clip(d time.Duration, rate, channels int) wav.Resource {
	n := int(d.Seconds()*float64(rate)) * channels * 2
	return wav.FromBytes(wav.Encode(make([]byte, n), rate, channels))
}

func testCatalog(t *testing.T) *gesture.Catalog {
	t.Helper()
	c, err := gesture.Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	err = c.Register(gesture.Gesture{
		Name: "quick heart",
		Steps: []gesture.Step{
			{Action: 20, Settle: 80 * time.Millisecond},
			{Action: 99},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// noWait skips the playback sleep.
var noWait = WaiterFunc(func(string, wav.Audio) {})

func TestPlayWaveform_StopsOnceAfterComputedWait(t *testing.T) {
	speech := robot.NewMockSpeech()
	o := New(speech, robot.NewMockArm(), testCatalog(t))

	if !o.IsIdle() {
		t.Fatal("expected idle before first action")
	}

	// 32000 bytes at 16 kHz mono = 1.0 s + 0.1 s margin.
	res := wav.FromBytes(wav.Encode(make([]byte, 32000), 16000, 1))
	if err := o.PlayClip(context.Background(), "welcome", res); err != nil {
		t.Fatalf("PlayClip: %v", err)
	}

	if n := speech.CallCount("Stop"); n != 1 {
		t.Fatalf("Stop called %d times, want 1", n)
	}
	play, stop := speech.Find("Play"), speech.Find("Stop")
	if play.Arg != "welcome" || stop.Arg != "welcome" {
		t.Errorf("clip ids: play=%q stop=%q", play.Arg, stop.Arg)
	}
	if play.Bytes != 32000 {
		t.Errorf("played %d bytes, want 32000", play.Bytes)
	}
	if gap := stop.Time.Sub(play.Time); gap < 1100*time.Millisecond {
		t.Errorf("stop after %v, want >= 1.1s", gap)
	}
	if !o.IsIdle() {
		t.Error("expected idle after last action")
	}
}

func TestPlaybackDuration(t *testing.T) {
	tests := []struct {
		name  string
		audio wav.Audio
		want  time.Duration
	}{
		{"one second mono", wav.Audio{PCM: make([]byte, 32000), SampleRate: 16000, Channels: 1}, 1100 * time.Millisecond},
		{"half second", wav.Audio{PCM: make([]byte, 16000), SampleRate: 16000, Channels: 1}, 600 * time.Millisecond},
		{"empty", wav.Audio{SampleRate: 16000, Channels: 1}, 100 * time.Millisecond},
		{"zero rate", wav.Audio{PCM: make([]byte, 10)}, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlaybackDuration(tt.audio, DefaultMargin); got != tt.want {
				t.Errorf("PlaybackDuration = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlayWaveform_FormatViolationNeverPlays(t *testing.T) {
	tests := []struct {
		name string
		res  wav.Resource
	}{
		{"44.1k stereo", clip(100*time.Millisecond, 44100, 2)},
		{"16k stereo", clip(100*time.Millisecond, 16000, 2)},
		{"24k mono", clip(100*time.Millisecond, 24000, 1)},
		{"not a wav", wav.FromBytes([]byte("definitely not RIFF"))},
		{"missing file", wav.FromFile("/nonexistent/clip.wav")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			speech := robot.NewMockSpeech()
			o := New(speech, robot.NewMockArm(), testCatalog(t), WithWaiter(noWait))
			before := testutil.ToFloat64(metricFormatViolations)

			if err := o.PlayWaveform(context.Background(), tt.res); err != nil {
				t.Errorf("expected violation to be contained, got %v", err)
			}
			if n := speech.CallCount("Play"); n != 0 {
				t.Errorf("Play called %d times", n)
			}
			if n := speech.CallCount("Stop"); n != 0 {
				t.Errorf("Stop called %d times", n)
			}
			if testutil.ToFloat64(metricFormatViolations) != before+1 {
				t.Error("format violation not counted")
			}
			if !o.IsIdle() {
				t.Error("expected idle")
			}
		})
	}
}

func TestPlayWaveform_BusyWhilePlaying(t *testing.T) {
	speech := robot.NewMockSpeech()
	var o *Orchestrator
	var during robot.State
	o = New(speech, robot.NewMockArm(), testCatalog(t), WithWaiter(WaiterFunc(func(string, wav.Audio) {
		during = o.State()
	})))

	if err := o.PlayWaveform(context.Background(), clip(time.Second, 16000, 1)); err != nil {
		t.Fatal(err)
	}
	if during != robot.StateBusy {
		t.Errorf("state during playback = %v, want busy", during)
	}
	if !o.IsIdle() {
		t.Error("expected idle after playback")
	}
}

func TestPlayWaveform_PlayFailure(t *testing.T) {
	speech := robot.NewMockSpeech()
	rejected := &robot.CommandError{Channel: "speech", Command: "play", Code: 7, Err: robot.ErrRejected}
	speech.PlayFunc = func(context.Context, string, []byte) error { return rejected }

	waited := false
	o := New(speech, robot.NewMockArm(), testCatalog(t), WithWaiter(WaiterFunc(func(string, wav.Audio) {
		waited = true
	})))

	err := o.PlayWaveform(context.Background(), clip(time.Second, 16000, 1))
	var ce *robot.CommandError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if waited {
		t.Error("should not wait after failed play")
	}
	if n := speech.CallCount("Stop"); n != 1 {
		t.Errorf("Stop called %d times, want 1", n)
	}
	if !o.IsIdle() {
		t.Error("expected idle after failure")
	}
}

func TestPlayWaveform_StopsDespiteCancellation(t *testing.T) {
	speech := robot.NewMockSpeech()
	var stopCtxErr error
	speech.StopFunc = func(ctx context.Context, _ string) error {
		stopCtxErr = ctx.Err()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	o := New(speech, robot.NewMockArm(), testCatalog(t), WithWaiter(WaiterFunc(func(string, wav.Audio) {
		cancel()
	})))

	if err := o.PlayWaveform(ctx, clip(time.Second, 16000, 1)); err != nil {
		t.Fatal(err)
	}
	if speech.CallCount("Stop") != 1 {
		t.Fatal("expected stop after cancellation")
	}
	if stopCtxErr != nil {
		t.Errorf("stop sent with cancelled context: %v", stopCtxErr)
	}
}

func TestRunGesture_UnknownNeverReachesArm(t *testing.T) {
	arm := robot.NewMockArm()
	o := New(robot.NewMockSpeech(), arm, testCatalog(t))

	err := o.RunGesture(context.Background(), "UNKNOWN_NAME")
	if !errors.Is(err, gesture.ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
	if n := len(arm.Calls()); n != 0 {
		t.Errorf("arm received %d calls", n)
	}
	if !o.IsIdle() {
		t.Error("expected idle")
	}
}

func TestRunGesture_StepsAndSettle(t *testing.T) {
	arm := robot.NewMockArm()
	o := New(robot.NewMockSpeech(), arm, testCatalog(t))

	if err := o.RunGesture(context.Background(), "quick heart"); err != nil {
		t.Fatalf("RunGesture: %v", err)
	}

	calls := arm.Calls()
	if len(calls) != 2 {
		t.Fatalf("arm calls = %d, want 2", len(calls))
	}
	if calls[0].Arg != "20" || calls[1].Arg != "99" {
		t.Errorf("actions = %s, %s; want 20, 99", calls[0].Arg, calls[1].Arg)
	}
	if gap := calls[1].Time.Sub(calls[0].Time); gap < 80*time.Millisecond {
		t.Errorf("release after %v, want >= 80ms settle", gap)
	}
}

func TestRunGesture_CustomMotion(t *testing.T) {
	arm := robot.NewMockArm()
	o := New(robot.NewMockSpeech(), arm, testCatalog(t))

	if err := o.RunGesture(context.Background(), "left"); err != nil {
		t.Fatal(err)
	}
	c := arm.Find("ExecuteCustom")
	if c == nil || c.Arg != "left" {
		t.Errorf("expected custom motion left, got %+v", arm.Calls())
	}
}

func TestRunGesture_ActuatorErrorSurfaced(t *testing.T) {
	arm := robot.NewMockArm()
	arm.Err = &robot.CommandError{Channel: "motion", Command: "action", Code: 3104, Err: robot.ErrRejected}
	o := New(robot.NewMockSpeech(), arm, testCatalog(t))

	err := o.RunGesture(context.Background(), "heart")
	if !errors.Is(err, robot.ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if n := len(arm.Calls()); n != 1 {
		t.Errorf("arm calls = %d, want 1 (abort after first failed step)", n)
	}
	if !o.IsIdle() {
		t.Error("expected idle after failure")
	}
}

func TestRunSynchronized_Concurrent(t *testing.T) {
	speech := robot.NewMockSpeech()
	arm := robot.NewMockArm()
	arm.Delay = 500 * time.Millisecond
	o := New(speech, arm, testCatalog(t))

	if !o.IsIdle() {
		t.Fatal("expected idle before pair")
	}

	start := time.Now()
	err := o.RunSynchronized(context.Background(), clip(2*time.Second, 16000, 1), o.GestureAction("high wave"))
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("RunSynchronized: %v", err)
	}

	// 2.0 s playback + 0.1 s margin runs alongside a 0.5 s motion.
	if elapsed < 2100*time.Millisecond {
		t.Errorf("returned after %v, before playback finished", elapsed)
	}
	if elapsed >= 2500*time.Millisecond {
		t.Errorf("took %v, halves were serialized", elapsed)
	}
	if speech.CallCount("Stop") != 1 || arm.CallCount("ExecuteAction") != 1 {
		t.Errorf("speech=%v arm=%v", speech.Calls(), arm.Calls())
	}
	if !o.IsIdle() {
		t.Error("expected idle after pair")
	}
}

func TestRunPair_StartsBothBeforeWaiting(t *testing.T) {
	o := New(robot.NewMockSpeech(), robot.NewMockArm(), testCatalog(t))

	var started sync.WaitGroup
	started.Add(2)
	half := func(ctx context.Context) error {
		started.Done()
		started.Wait() // deadlocks unless both halves run concurrently
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- o.RunPair(context.Background(), Pair{Speech: half, Motion: half}) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pair halves did not run concurrently")
	}
}

func TestRunPair_WaitsForBothAndReturnsError(t *testing.T) {
	o := New(robot.NewMockSpeech(), robot.NewMockArm(), testCatalog(t))
	boom := errors.New("boom")

	var slowDone bool
	err := o.RunPair(context.Background(), Pair{
		Speech: func(context.Context) error {
			time.Sleep(100 * time.Millisecond)
			slowDone = true
			return nil
		},
		Motion: func(context.Context) error { return boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !slowDone {
		t.Error("pair returned before the slow half finished")
	}
}

func TestRunPair_NilHalf(t *testing.T) {
	arm := robot.NewMockArm()
	o := New(robot.NewMockSpeech(), arm, testCatalog(t))

	if err := o.RunPair(context.Background(), Pair{Motion: o.GestureAction("clap")}); err != nil {
		t.Fatal(err)
	}
	if arm.CallCount("ExecuteAction") != 1 {
		t.Error("motion half did not run")
	}
}

func TestSpeak(t *testing.T) {
	speech := robot.NewMockSpeech()
	o := New(speech, robot.NewMockArm(), testCatalog(t))

	if err := o.Speak(context.Background(), "Hello", robot.LanguageEnglish); err != nil {
		t.Fatal(err)
	}
	if c := speech.Find("Speak"); c == nil || c.Arg != "Hello" {
		t.Errorf("speak not forwarded: %+v", speech.Calls())
	}
	if !o.IsIdle() {
		t.Error("speak should not touch state")
	}
}

func TestSetVolume_Clamps(t *testing.T) {
	speech := robot.NewMockSpeech()
	o := New(speech, robot.NewMockArm(), testCatalog(t))

	_ = o.SetVolume(context.Background(), 140)
	_ = o.SetVolume(context.Background(), -5)

	calls := speech.Calls()
	if len(calls) != 2 || calls[0].Arg != "100" || calls[1].Arg != "0" {
		t.Errorf("volume calls = %+v", calls)
	}
}
