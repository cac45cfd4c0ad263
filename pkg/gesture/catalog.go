// Package gesture holds the catalog that maps gesture names to arm
// commands. The catalog is loaded once at startup and read-only afterwards.
package gesture

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed gestures.yaml
var builtinYAML []byte

// Step is one arm command. Exactly one of Action or Custom is set.
type Step struct {
	// Action is a built-in arm action id.
	Action int `yaml:"action,omitempty"`

	// Custom names a motion recorded on the robot.
	Custom string `yaml:"custom,omitempty"`

	// Settle is how long to wait after this step before the next one.
	Settle time.Duration `yaml:"settle,omitempty"`
}

// IsCustom reports whether the step runs a named custom motion.
func (s Step) IsCustom() bool {
	return s.Custom != ""
}

func (s Step) String() string {
	if s.IsCustom() {
		return "custom:" + s.Custom
	}
	return fmt.Sprintf("action:%d", s.Action)
}

// Gesture is a named sequence of arm commands.
type Gesture struct {
	Name        string   `yaml:"name"`
	Aliases     []string `yaml:"aliases,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Steps       []Step   `yaml:"steps"`
}

// Validate checks that the gesture can be executed.
func (g Gesture) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalid)
	}
	if len(g.Steps) == 0 {
		return fmt.Errorf("%w: %q has no steps", ErrInvalid, g.Name)
	}
	for i, s := range g.Steps {
		switch {
		case s.Custom != "" && s.Action != 0:
			return fmt.Errorf("%w: %q step %d sets both action and custom", ErrInvalid, g.Name, i)
		case s.Custom == "" && s.Action <= 0:
			return fmt.Errorf("%w: %q step %d has no command", ErrInvalid, g.Name, i)
		case s.Settle < 0:
			return fmt.Errorf("%w: %q step %d has negative settle", ErrInvalid, g.Name, i)
		}
	}
	return nil
}

// file is the on-disk catalog layout.
type file struct {
	Gestures []Gesture `yaml:"gestures"`
}

// Catalog maps names and aliases to gestures.
type Catalog struct {
	mu       sync.RWMutex
	gestures map[string]Gesture // by canonical name
	aliases  map[string]string  // alias -> canonical name
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		gestures: make(map[string]Gesture),
		aliases:  make(map[string]string),
	}
}

// Builtin returns a catalog holding the embedded G1 gestures.
func Builtin() (*Catalog, error) {
	c := NewCatalog()
	if err := c.load(builtinYAML); err != nil {
		return nil, fmt.Errorf("builtin gestures: %w", err)
	}
	return c, nil
}

// LoadFile merges gestures from a YAML file into the catalog. Entries with
// an existing name replace the built-in definition.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read gesture file: %w", err)
	}
	if err := c.load(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (c *Catalog) load(data []byte) error {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for _, g := range f.Gestures {
		if err := c.Register(g); err != nil {
			return err
		}
	}
	return nil
}

// Register adds or replaces a gesture.
func (c *Catalog) Register(g Gesture) error {
	if err := g.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.gestures[g.Name] = g
	delete(c.aliases, g.Name)
	for _, a := range g.Aliases {
		c.aliases[a] = g.Name
	}
	return nil
}

// Lookup returns the gesture for name or alias, or *UnknownError.
func (c *Catalog) Lookup(name string) (Gesture, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if g, ok := c.gestures[name]; ok {
		return g, nil
	}
	if canonical, ok := c.aliases[name]; ok {
		return c.gestures[canonical], nil
	}
	return Gesture{}, &UnknownError{Name: name}
}

// Has reports whether name resolves to a gesture.
func (c *Catalog) Has(name string) bool {
	_, err := c.Lookup(name)
	return err == nil
}

// List returns canonical gesture names, sorted.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.gestures))
	for name := range c.gestures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptions returns canonical name to description.
func (c *Catalog) Descriptions() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.gestures))
	for name, g := range c.gestures {
		out[name] = g.Description
	}
	return out
}

// Len returns the number of gestures.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.gestures)
}
