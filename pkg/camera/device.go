package camera

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gocv.io/x/gocv"
)

var (
	// ErrCannotOpen is returned when a device node cannot be opened.
	ErrCannotOpen = errors.New("camera: cannot open device")
	// ErrNoFrames is returned when an open device yields no frame.
	ErrNoFrames = errors.New("camera: no frames")
)

// Grabber reads one JPEG-encoded frame at a time from an open device.
type Grabber interface {
	Grab(quality int) ([]byte, error)
	Close() error
}

// Opener opens a device for the given config.
type Opener func(cfg Config) (Grabber, error)

// deviceGrabber is a V4L2 capture through OpenCV.
type deviceGrabber struct {
	vc  *gocv.VideoCapture
	mat gocv.Mat
}

// OpenDevice opens cfg.Device with the V4L2 backend, requesting MJPG at
// the configured size and frame rate. It is the default Opener.
func OpenDevice(cfg Config) (Grabber, error) {
	vc, err := gocv.OpenVideoCaptureWithAPI(deviceArg(cfg.Device), gocv.VideoCaptureV4L2)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCannotOpen, cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w %s", ErrCannotOpen, cfg.Device)
	}

	vc.Set(gocv.VideoCaptureFOURCC, float64(vc.ToCodec("MJPG")))
	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(cfg.FPS))

	return &deviceGrabber{vc: vc, mat: gocv.NewMat()}, nil
}

func (g *deviceGrabber) Grab(quality int) ([]byte, error) {
	if ok := g.vc.Read(&g.mat); !ok || g.mat.Empty() {
		return nil, ErrNoFrames
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, g.mat, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	defer buf.Close()

	return bytes.Clone(buf.GetBytes()), nil
}

func (g *deviceGrabber) Close() error {
	g.mat.Close()
	return g.vc.Close()
}

// probeDevice opens path, reads one frame and returns its size.
func probeDevice(path string) (width, height int, err error) {
	vc, err := gocv.OpenVideoCaptureWithAPI(deviceArg(path), gocv.VideoCaptureV4L2)
	if err != nil || !vc.IsOpened() {
		if vc != nil {
			vc.Close()
		}
		return 0, 0, ErrCannotOpen
	}
	defer vc.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	if ok := vc.Read(&frame); !ok || frame.Empty() {
		return 0, 0, ErrNoFrames
	}
	return frame.Cols(), frame.Rows(), nil
}

// deviceArg turns /dev/videoN into the index N, which OpenCV's V4L2
// backend opens directly. Anything else is passed through as a path.
func deviceArg(path string) any {
	if n, ok := deviceIndex(path); ok {
		return n
	}
	return path
}

func deviceIndex(path string) (int, bool) {
	rest, ok := strings.CutPrefix(path, "/dev/video")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}
