package camera

import "sort"

// Preset names. The ZED modes are side-by-side, so width covers both eyes.
const (
	PresetDefault = "default"
	PresetVGA     = "vga"
	PresetHD720   = "hd720"
	PresetHD1080  = "hd1080"
	Preset2K      = "2k"
	PresetLowBand = "low-bandwidth"
)

// preset is a capture format; applying one keeps the configured device.
type preset struct {
	Width, Height, FPS, Quality int
}

var presets = map[string]preset{
	PresetDefault: {1280, 720, 30, 80},
	PresetVGA:     {1344, 376, 100, 80},
	PresetHD720:   {2560, 720, 60, 80},
	PresetHD1080:  {3840, 1080, 30, 85},
	Preset2K:      {4416, 1242, 15, 90},
	// Single-eye VGA for operators on the venue Wi-Fi.
	PresetLowBand: {672, 376, 15, 50},
}

// PresetNames returns the available preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset returns cfg with the named preset's format applied.
func ApplyPreset(cfg Config, name string) (Config, bool) {
	p, ok := presets[name]
	if !ok {
		return cfg, false
	}
	cfg.Width = p.Width
	cfg.Height = p.Height
	cfg.FPS = p.FPS
	cfg.Quality = p.Quality
	return cfg, true
}
