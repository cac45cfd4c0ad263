// camera-check probes every /dev/video* node and reports which ones
// deliver frames.
package main

import (
	"fmt"
	"os"

	"github.com/teslashibe/go-g1/internal/log"
	"github.com/teslashibe/go-g1/pkg/camera"
)

func main() {
	log.Init(os.Getenv("LOG_LEVEL"))

	statuses, err := camera.Check()
	if err != nil {
		log.Error("enumerate devices", "error", err)
		os.Exit(1)
	}
	if len(statuses) == 0 {
		fmt.Println("No /dev/video devices found")
		os.Exit(1)
	}

	ok := 0
	for _, s := range statuses {
		fmt.Println(s)
		if s.OK() {
			ok++
		}
	}
	if ok == 0 {
		os.Exit(1)
	}
}
