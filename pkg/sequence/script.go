package sequence

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script is an ordered list of steps.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Validate checks every step.
func (s Script) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: %q has no steps", ErrInvalidScript, s.Name)
	}
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("%w: step %d: %v", ErrInvalidScript, i, err)
		}
	}
	return nil
}

// LoadFile reads a YAML script.
func LoadFile(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML script.
func Parse(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

// UnknownVisitor is the name reported for a face that is not recognized.
const UnknownVisitor = "UNKNOWN"

// Show lines.
const (
	IntroText    = "Today, we will be demonstrating autonomous pick and place capabilities."
	ExplainText  = "The robot will use Artificial Intelligence to identify objects using its camera and generate the required action to pick and place the item in the basket."
	BeginText    = "Let's begin the demonstration!"
	GreetGesture = "high wave"
	TalkGesture  = "left"
)

var trailingDigits = regexp.MustCompile(`\s*\d+$`)

// VisitorName turns a face database identity ("photos/Karthee 2.jpg")
// into a display name ("Karthee").
func VisitorName(identity string) string {
	name := identity
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(trailingDigits.ReplaceAllString(name, ""))
	if name == "" {
		return UnknownVisitor
	}
	return name
}

// GreetingText returns the welcome line for a visitor.
func GreetingText(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == UnknownVisitor {
		return "Hello, welcome to the airshow!"
	}
	return fmt.Sprintf("Hello, %s, welcome to the airshow!", name)
}

// Greeting welcomes a visitor with a high wave.
func Greeting(name string) Script {
	return Script{
		Name: "greeting",
		Steps: []Step{
			Together(GreetingText(name), GreetGesture).Named("greet"),
		},
	}
}

// Airshow is the full pick-and-place show opening.
func Airshow(name string) Script {
	return Script{
		Name: "airshow",
		Steps: []Step{
			Together(GreetingText(name), GreetGesture).Named("greet"),
			Play(IntroText).Named("intro"),
			Together(ExplainText, TalkGesture).OnlyIfIdle().Named("explain"),
			Play(BeginText).Named("begin"),
		},
	}
}
