// airshow greets a visitor and opens the pick-and-place demonstration.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/teslashibe/go-g1/internal/config"
	"github.com/teslashibe/go-g1/internal/log"
	"github.com/teslashibe/go-g1/pkg/app"
	"github.com/teslashibe/go-g1/pkg/robot"
	"github.com/teslashibe/go-g1/pkg/sequence"
)

func main() {
	name := flag.String("name", sequence.UnknownVisitor, "Visitor name or face identity (e.g. faces/Karthee 2.jpg)")
	scriptPath := flag.String("script", "", "YAML script to run instead of the built-in airshow")
	rehearse := flag.Bool("rehearse", false, "Play speech locally and log arm motions instead of moving")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	logger := log.Component("airshow")

	script := sequence.Airshow(sequence.VisitorName(*name))
	if *scriptPath != "" {
		if script, err = sequence.LoadFile(*scriptPath); err != nil {
			logger.Error("load script", "path", *scriptPath, "error", err)
			os.Exit(1)
		}
	}

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

	logger.Info("starting show", "script", script.Name, "steps", len(script.Steps), "event", cfg.Show.Event)
	if err := rig.Sequencer.Run(ctx, script); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("show interrupted")
			return
		}
		logger.Error("show failed", "error", err)
		rig.Shutdown()
		os.Exit(1)
	}
	logger.Info("show complete")
}
