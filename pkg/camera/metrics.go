package camera

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "g1_camera_frames_total",
		Help: "JPEG frames captured and handed to the sink.",
	})

	grabFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "g1_camera_grab_failures_total",
		Help: "Frames that could not be read or encoded.",
	})

	deviceReopens = promauto.NewCounter(prometheus.CounterOpts{
		Name: "g1_camera_reopens_total",
		Help: "Device reopen after a stream setting changed.",
	})
)
