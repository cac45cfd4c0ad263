// g1 runs the operator control server: gesture and speech API, the
// camera stream and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-g1/internal/config"
	"github.com/teslashibe/go-g1/internal/log"
	"github.com/teslashibe/go-g1/pkg/app"
	"github.com/teslashibe/go-g1/pkg/camera"
	"github.com/teslashibe/go-g1/pkg/robot"
	"github.com/teslashibe/go-g1/pkg/web"
)

func main() {
	noCamera := flag.Bool("no-camera", false, "Do not open the head camera")
	rehearse := flag.Bool("rehearse", false, "Play speech locally and log arm motions instead of moving")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	logger := log.Component("g1")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rig := app.New(cfg, app.WithLogger(log.L()), app.WithRehearsal(*rehearse))
	defer rig.Shutdown()

	if err := rig.Init(ctx); err != nil {
		var initErr *robot.InitError
		if errors.As(err, &initErr) {
			logger.Error("robot unreachable", "endpoint", initErr.Endpoint, "error", initErr.Err)
		} else {
			logger.Error("initialization failed", "error", err)
		}
		os.Exit(1)
	}

	cam := camera.NewManager(camera.Config{
		Device:  cfg.Camera.Device,
		Width:   cfg.Camera.Width,
		Height:  cfg.Camera.Height,
		FPS:     cfg.Camera.FPS,
		Quality: cfg.Camera.Quality,
	})
	cam.OnChange(func(c camera.Config) {
		logger.Info("camera settings changed", "device", c.Device, "width", c.Width, "height", c.Height, "fps", c.FPS, "quality", c.Quality)
	})

	server := web.NewServer(cfg.Server.Port, web.Deps{
		Robot:    rig.Orchestrator,
		Gestures: rig.Catalog,
		Status:   rig.Status,
		Show:     rig.Sequencer,
		Camera:   cam,
		Logger:   log.L(),
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(ctx)
	})
	if !*noCamera {
		g.Go(func() error {
			// The control API stays up without video.
			if err := camera.NewSource(cam, camera.WithLogger(log.L())).Run(ctx, server.CameraSink()); err != nil {
				logger.Error("camera stopped", "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server failed", "error", err)
		rig.Shutdown()
		os.Exit(1)
	}
}
