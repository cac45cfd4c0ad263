package gesture

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBuiltin(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	if c.Len() != 20 {
		t.Errorf("expected 20 built-in gestures, got %d", c.Len())
	}

	wave, err := c.Lookup("high wave")
	if err != nil {
		t.Fatalf("Lookup(high wave): %v", err)
	}
	if len(wave.Steps) != 1 || wave.Steps[0].Action != 26 {
		t.Errorf("high wave steps = %v", wave.Steps)
	}
}

func TestBuiltin_HeartReleasesAfterSettle(t *testing.T) {
	c, _ := Builtin()

	heart, err := c.Lookup("heart")
	if err != nil {
		t.Fatal(err)
	}
	if len(heart.Steps) != 2 {
		t.Fatalf("heart has %d steps, want 2", len(heart.Steps))
	}
	if heart.Steps[0].Action != 20 || heart.Steps[0].Settle != 2*time.Second {
		t.Errorf("first step = %+v", heart.Steps[0])
	}
	if heart.Steps[1].Action != 99 {
		t.Errorf("second step = %+v, want release arm", heart.Steps[1])
	}
}

func TestLookup_Alias(t *testing.T) {
	c, _ := Builtin()

	g, err := c.Lookup("wave")
	if err != nil {
		t.Fatalf("Lookup(wave): %v", err)
	}
	if g.Name != "high wave" {
		t.Errorf("alias resolved to %q", g.Name)
	}
}

func TestLookup_Custom(t *testing.T) {
	c, _ := Builtin()

	g, err := c.Lookup("left")
	if err != nil {
		t.Fatal(err)
	}
	if !g.Steps[0].IsCustom() || g.Steps[0].Custom != "left" {
		t.Errorf("left step = %v", g.Steps[0])
	}
}

func TestLookup_Unknown(t *testing.T) {
	c, _ := Builtin()

	_, err := c.Lookup("UNKNOWN_NAME")
	if !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
	var ue *UnknownError
	if !errors.As(err, &ue) || ue.Name != "UNKNOWN_NAME" {
		t.Errorf("expected UnknownError naming the gesture, got %v", err)
	}
}

func TestRegister_Invalid(t *testing.T) {
	c := NewCatalog()

	tests := []struct {
		name string
		g    Gesture
	}{
		{"no name", Gesture{Steps: []Step{{Action: 1}}}},
		{"no steps", Gesture{Name: "x"}},
		{"empty step", Gesture{Name: "x", Steps: []Step{{}}}},
		{"both", Gesture{Name: "x", Steps: []Step{{Action: 1, Custom: "y"}}}},
		{"negative settle", Gesture{Name: "x", Steps: []Step{{Action: 1, Settle: -time.Second}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Register(tt.g); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
	if c.Len() != 0 {
		t.Errorf("invalid gestures were registered")
	}
}

func TestLoadFile_Overrides(t *testing.T) {
	c, _ := Builtin()

	path := filepath.Join(t.TempDir(), "gestures.yaml")
	content := `gestures:
  - name: high wave
    description: slow wave
    steps:
      - custom: slow_wave
        settle: 500ms
  - name: bow
    steps:
      - custom: bow
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	g, _ := c.Lookup("high wave")
	if g.Steps[0].Custom != "slow_wave" || g.Steps[0].Settle != 500*time.Millisecond {
		t.Errorf("override not applied: %+v", g.Steps[0])
	}
	if !c.Has("bow") {
		t.Error("expected new gesture bow")
	}
	if c.Len() != 21 {
		t.Errorf("Len = %d, want 21", c.Len())
	}
}

func TestList_Sorted(t *testing.T) {
	c, _ := Builtin()
	names := c.List()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("List not sorted at %d: %q > %q", i, names[i-1], names[i])
		}
	}
	if len(c.Descriptions()) != len(names) {
		t.Error("Descriptions and List disagree")
	}
}
