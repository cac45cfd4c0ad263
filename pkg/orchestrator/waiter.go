package orchestrator

import (
	"time"

	"github.com/teslashibe/go-g1/pkg/wav"
)

// DefaultMargin is added to the computed playback time before the clip is
// stopped.
const DefaultMargin = 100 * time.Millisecond

// PlaybackWaiter blocks until the robot has finished playing a clip.
//
// The bridge gives no completion event, so the default waiter sleeps for
// an estimate. An actuator that reports completion can supply its own
// waiter without changing callers. Wait must not return early on
// cancellation: the clip is stopped as soon as Wait returns.
type PlaybackWaiter interface {
	Wait(clipID string, audio wav.Audio)
}

// WaiterFunc adapts a function to PlaybackWaiter.
type WaiterFunc func(clipID string, audio wav.Audio)

// Wait calls f.
func (f WaiterFunc) Wait(clipID string, audio wav.Audio) {
	f(clipID, audio)
}

// EstimatedWait sleeps for the PCM length in seconds plus Margin.
type EstimatedWait struct {
	Margin time.Duration
}

// Wait sleeps for PlaybackDuration(audio, Margin).
func (w EstimatedWait) Wait(_ string, audio wav.Audio) {
	time.Sleep(PlaybackDuration(audio, w.Margin))
}

// PlaybackDuration returns len(pcm) / (rate * channels * 2) + margin.
// For 32000 bytes of 16 kHz mono that is 1.0 s + margin.
func PlaybackDuration(audio wav.Audio, margin time.Duration) time.Duration {
	bytesPerSecond := audio.SampleRate * audio.Channels * wav.BytesPerSample
	if bytesPerSecond <= 0 {
		return margin
	}
	return time.Duration(len(audio.PCM))*time.Second/time.Duration(bytesPerSecond) + margin
}
