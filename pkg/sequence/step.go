package sequence

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Kind is the type of a script step.
type Kind string

const (
	KindSay      Kind = "say"      // robot-side TTS, fire and forget
	KindPlay     Kind = "play"     // synthesized or pre-made waveform
	KindGesture  Kind = "gesture"  // arm gesture
	KindTogether Kind = "together" // waveform and gesture as one synchronized pair
	KindPause    Kind = "pause"
)

// Step is one entry of a script.
type Step struct {
	Kind Kind `yaml:"kind"`

	// Name labels the step in logs and errors.
	Name string `yaml:"name,omitempty"`

	// Text is spoken by say, play and together steps.
	Text     string `yaml:"text,omitempty"`
	Language string `yaml:"language,omitempty"`

	// Waveform is a WAV file played instead of synthesizing Text.
	Waveform string `yaml:"waveform,omitempty"`

	Gesture string `yaml:"gesture,omitempty"`

	Duration time.Duration `yaml:"duration,omitempty"`

	// IfIdle runs the step only when the robot reads idle.
	IfIdle bool `yaml:"if_idle,omitempty"`
}

// Say speaks text with the robot's own TTS engine.
func Say(text string) Step {
	return Step{Kind: KindSay, Text: text}
}

// Play synthesizes text and plays it.
func Play(text string) Step {
	return Step{Kind: KindPlay, Text: text}
}

// PlayFile plays a WAV file.
func PlayFile(path string) Step {
	return Step{Kind: KindPlay, Waveform: path}
}

// Gesture runs a catalog gesture.
func Gesture(name string) Step {
	return Step{Kind: KindGesture, Gesture: name}
}

// Together plays synthesized text while running a gesture.
func Together(text, gesture string) Step {
	return Step{Kind: KindTogether, Text: text, Gesture: gesture}
}

// Pause waits d.
func Pause(d time.Duration) Step {
	return Step{Kind: KindPause, Duration: d}
}

// OnlyIfIdle returns a copy of s that is skipped unless the robot is idle.
func (s Step) OnlyIfIdle() Step {
	s.IfIdle = true
	return s
}

// Named returns a copy of s with a log label.
func (s Step) Named(name string) Step {
	s.Name = name
	return s
}

// Label names the step for logs.
func (s Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	switch s.Kind {
	case KindGesture:
		return fmt.Sprintf("gesture %q", s.Gesture)
	case KindTogether:
		return fmt.Sprintf("together %q + %q", truncate(s.Text, 32), s.Gesture)
	case KindPause:
		return fmt.Sprintf("pause %v", s.Duration)
	default:
		if s.Waveform != "" {
			return fmt.Sprintf("%s %s", s.Kind, s.Waveform)
		}
		return fmt.Sprintf("%s %q", s.Kind, truncate(s.Text, 32))
	}
}

// needsSynthesis reports whether Prepare must synthesize the step's text.
func (s Step) needsSynthesis() bool {
	return (s.Kind == KindPlay || s.Kind == KindTogether) && s.Waveform == "" && s.Text != ""
}

func (s Step) validate() error {
	switch s.Kind {
	case KindSay:
		if s.Text == "" {
			return fmt.Errorf("say step needs text")
		}
	case KindPlay:
		if s.Text == "" && s.Waveform == "" {
			return fmt.Errorf("play step needs text or waveform")
		}
	case KindGesture:
		if s.Gesture == "" {
			return fmt.Errorf("gesture step needs a gesture")
		}
	case KindTogether:
		if s.Gesture == "" || (s.Text == "" && s.Waveform == "") {
			return fmt.Errorf("together step needs a gesture and text or waveform")
		}
	case KindPause:
		if s.Duration <= 0 {
			return fmt.Errorf("pause step needs a positive duration")
		}
	default:
		return fmt.Errorf("unknown step kind %q", s.Kind)
	}
	return nil
}

// truncate shortens s to at most n runes, ending in "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}
