package camera

import (
	"fmt"
	"sync"
)

// Patch is a partial settings change as posted by the control UI.
// Preset is applied first; the other set fields override it.
type Patch struct {
	Preset  *string `json:"preset,omitempty"`
	Device  *string `json:"device,omitempty"`
	Width   *int    `json:"width,omitempty"`
	Height  *int    `json:"height,omitempty"`
	FPS     *int    `json:"fps,omitempty"`
	Quality *int    `json:"quality,omitempty"`
}

// Manager owns the live camera settings. Source reads them before every
// frame, so a change takes effect without restarting the stream.
type Manager struct {
	mu        sync.RWMutex
	cfg       Config
	listeners []func(Config)
}

func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

// OnChange registers fn to run after every accepted change.
func (m *Manager) OnChange(fn func(Config)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Apply merges p into the current settings. Invalid results are rejected
// and leave the settings untouched.
func (m *Manager) Apply(p Patch) (Config, error) {
	m.mu.Lock()
	next := m.cfg
	if p.Preset != nil {
		var ok bool
		if next, ok = ApplyPreset(next, *p.Preset); !ok {
			m.mu.Unlock()
			return m.Config(), fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, *p.Preset)
		}
	}
	set(&next.Device, p.Device)
	set(&next.Width, p.Width)
	set(&next.Height, p.Height)
	set(&next.FPS, p.FPS)
	set(&next.Quality, p.Quality)

	if err := next.Validate(); err != nil {
		m.mu.Unlock()
		return m.Config(), err
	}
	m.cfg = next
	listeners := m.listeners
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
