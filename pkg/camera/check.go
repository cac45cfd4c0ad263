package camera

import (
	"fmt"
	"path/filepath"
	"sort"
)

// DeviceStatus is the result of probing one video node.
type DeviceStatus struct {
	Path   string `json:"path"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Err    error  `json:"-"`
}

// OK reports whether the device produced a frame.
func (s DeviceStatus) OK() bool { return s.Err == nil }

func (s DeviceStatus) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s: FAIL (%v)", s.Path, s.Err)
	}
	return fmt.Sprintf("%s: OK (%dx%d)", s.Path, s.Width, s.Height)
}

// Check probes every /dev/video* node. An empty result means no nodes
// exist.
func Check() ([]DeviceStatus, error) {
	paths, err := filepath.Glob("/dev/video*")
	if err != nil {
		return nil, err
	}
	return checkDevices(paths, probeDevice), nil
}

func checkDevices(paths []string, probe func(string) (int, int, error)) []DeviceStatus {
	sorted := append([]string(nil), paths...)
	sort.Slice(sorted, func(i, j int) bool {
		a, aok := deviceIndex(sorted[i])
		b, bok := deviceIndex(sorted[j])
		if aok && bok {
			return a < b
		}
		return sorted[i] < sorted[j]
	})

	out := make([]DeviceStatus, 0, len(sorted))
	for _, path := range sorted {
		w, h, err := probe(path)
		out = append(out, DeviceStatus{Path: path, Width: w, Height: h, Err: err})
	}
	return out
}
