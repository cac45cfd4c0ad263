package sequence

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestGreetingText(t *testing.T) {
	tests := map[string]string{
		"Karthee":      "Hello, Karthee, welcome to the airshow!",
		UnknownVisitor: "Hello, welcome to the airshow!",
		"":             "Hello, welcome to the airshow!",
	}
	for name, want := range tests {
		if got := GreetingText(name); got != want {
			t.Errorf("GreetingText(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestVisitorName(t *testing.T) {
	tests := map[string]string{
		"vip_images/Karthee 2.jpg": "Karthee",
		"Ruofei3":                  "Ruofei",
		"Jane Doe":                 "Jane Doe",
		"42.png":                   UnknownVisitor,
	}
	for in, want := range tests {
		if got := VisitorName(in); got != want {
			t.Errorf("VisitorName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAirshowScript(t *testing.T) {
	s := Airshow("Karthee")
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(s.Steps) != 4 {
		t.Fatalf("steps = %d", len(s.Steps))
	}
	explain := s.Steps[2]
	if explain.Kind != KindTogether || explain.Gesture != TalkGesture || !explain.IfIdle {
		t.Errorf("explain step = %+v", explain)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.yaml")
	content := `name: lobby
steps:
  - kind: together
    name: hello
    text: Welcome!
    gesture: face wave
  - kind: pause
    duration: 1500ms
  - kind: say
    text: ni hao
    language: zh
  - kind: gesture
    gesture: heart
    if_idle: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if s.Name != "lobby" || len(s.Steps) != 4 {
		t.Fatalf("script = %+v", s)
	}
	if s.Steps[1].Duration != 1500*time.Millisecond {
		t.Errorf("pause = %v", s.Steps[1].Duration)
	}
	if !s.Steps[3].IfIdle {
		t.Error("if_idle not parsed")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"no steps":     "name: empty\n",
		"unknown kind": "steps:\n  - kind: dance\n",
		"say no text":  "steps:\n  - kind: say\n",
		"bad pause":    "steps:\n  - kind: pause\n",
		"pair no move": "steps:\n  - kind: together\n    text: hi\n",
		"not yaml":     "steps: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalidScript) {
				t.Errorf("expected ErrInvalidScript, got %v", err)
			}
		})
	}
}

func TestLabel_TruncatesOnRuneBoundary(t *testing.T) {
	line := "欢迎来到航展，我是宇树机器人，今天我们将一起体验人工智能与机器人技术的精彩结合"
	label := Play(line).Label()
	if !utf8.ValidString(label) {
		t.Fatalf("label is not valid UTF-8: %q", label)
	}
	if !strings.HasSuffix(label, `..."`) {
		t.Errorf("label not shortened: %s", label)
	}
	if got := truncate(line, 32); utf8.RuneCountInString(got) != 32 {
		t.Errorf("truncate kept %d runes, want 32", utf8.RuneCountInString(got))
	}
	if got := truncate("hello", 32); got != "hello" {
		t.Errorf("short text changed: %q", got)
	}
}
