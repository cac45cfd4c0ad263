// Package camera captures frames from the G1 head camera (a ZED stereo
// camera exposed as a V4L2 device) and holds its runtime-tunable settings.
package camera

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds the capture parameters. It can be changed at runtime
// through a Manager.
type Config struct {
	Device  string `json:"device"`  // V4L2 node, e.g. /dev/video2
	Width   int    `json:"width"`   // Frame width in pixels (both eyes for side-by-side)
	Height  int    `json:"height"`  // Frame height in pixels
	FPS     int    `json:"fps"`     // Target frames per second
	Quality int    `json:"quality"` // JPEG quality 1-100
}

// Limits of the ZED 2 sensor pair in side-by-side mode.
const (
	MaxWidth  = 4416
	MaxHeight = 1242
	MaxFPS    = 100
)

// DefaultDevice is the ZED node on the G1 head computer.
const DefaultDevice = "/dev/video2"

// DefaultConfig returns the configuration the image server starts with.
func DefaultConfig() Config {
	return Config{
		Device:  DefaultDevice,
		Width:   1280,
		Height:  720,
		FPS:     30,
		Quality: 80,
	}
}

// Validate reports every out-of-range field in one error.
func (c Config) Validate() error {
	var problems []string

	if c.Device == "" {
		problems = append(problems, "device is required")
	}
	if c.Width <= 0 || c.Width > MaxWidth {
		problems = append(problems, fmt.Sprintf("width must be 1-%d, got %d", MaxWidth, c.Width))
	}
	if c.Height <= 0 || c.Height > MaxHeight {
		problems = append(problems, fmt.Sprintf("height must be 1-%d, got %d", MaxHeight, c.Height))
	}
	if c.FPS <= 0 || c.FPS > MaxFPS {
		problems = append(problems, fmt.Sprintf("fps must be 1-%d, got %d", MaxFPS, c.FPS))
	}
	if c.Quality < 1 || c.Quality > 100 {
		problems = append(problems, fmt.Sprintf("quality must be 1-100, got %d", c.Quality))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}

// ErrInvalidConfig is wrapped by Validate failures.
var ErrInvalidConfig = errors.New("camera: invalid config")

// sameStream reports whether two configs can share an open device.
// Quality only affects encoding.
func (c Config) sameStream(o Config) bool {
	return c.Device == o.Device && c.Width == o.Width && c.Height == o.Height && c.FPS == o.FPS
}
