// Package web serves the operator control API, the camera stream and
// Prometheus metrics for the G1 demo rig.
package web

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/go-g1/pkg/camera"
	"github.com/teslashibe/go-g1/pkg/hub"
	"github.com/teslashibe/go-g1/pkg/robot"
	"github.com/teslashibe/go-g1/pkg/sequence"
)

// Robot is the orchestrator surface the control API drives.
type Robot interface {
	State() robot.State
	Speak(ctx context.Context, text string, lang robot.Language) error
	RunGesture(ctx context.Context, name string) error
	SetVolume(ctx context.Context, percent int) error
}

// Gestures lists the catalog.
type Gestures interface {
	Has(name string) bool
	Descriptions() map[string]string
}

// Show runs scripted sequences.
type Show interface {
	Run(ctx context.Context, script sequence.Script) error
}

// Deps are the components the server exposes. Status, Show and Camera
// are optional; their routes answer 503 when unset.
type Deps struct {
	Robot    Robot
	Gestures Gestures
	Status   robot.StatusChecker
	Show     Show
	Camera   *camera.Manager
	Logger   *slog.Logger
}

// Event is pushed to /ws/events after every operator action.
type Event struct {
	Time   time.Time `json:"time"`
	Type   string    `json:"type"` // gesture, say, greet, volume, camera
	Name   string    `json:"name,omitempty"`
	Status string    `json:"status"` // ok, error
	Error  string    `json:"error,omitempty"`
}

// Server is the control and streaming server.
type Server struct {
	app    *fiber.App
	port   string
	deps   Deps
	logger *slog.Logger

	cameraHub *hub.Hub
	eventHub  *hub.Hub

	// busy serializes every operator action that reaches the robot
	// (gesture, greet, say, volume). A second request while one runs gets
	// 409 instead of queueing behind it, so each channel has at most one
	// command outstanding.
	busy sync.Mutex
}

// NewServer creates a server listening on port once started.
func NewServer(port string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		port:      port,
		deps:      deps,
		logger:    logger.With("component", "web"),
		cameraHub: hub.New("camera", logger),
		eventHub:  hub.New("events", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "G1 Control",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/gestures", s.handleListGestures)
	api.Post("/gestures/:name", s.handleRunGesture)
	api.Post("/say", s.handleSay)
	api.Post("/greet", s.handleGreet)
	api.Post("/volume", s.handleVolume)
	api.Get("/camera", s.handleGetCamera)
	api.Post("/camera", s.handleUpdateCamera)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/camera", websocket.New(func(c *websocket.Conn) { s.cameraHub.Serve(c) }))
	app.Get("/ws/events", websocket.New(func(c *websocket.Conn) { s.eventHub.Serve(c) }))

	s.app = app
	return s
}

// CameraSink is where camera frames go to reach /ws/camera clients.
func (s *Server) CameraSink() camera.Sink {
	return s.cameraHub
}

// Start runs the hubs and listens until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.port)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.cameraHub.Run(ctx)
	go s.eventHub.Run(ctx)

	go func() {
		<-ctx.Done()
		if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
			s.logger.Warn("shutdown", "error", err)
		}
	}()

	s.logger.Info("control server listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

func (s *Server) publish(ev Event) {
	ev.Time = time.Now()
	if err := s.eventHub.BroadcastJSON(ev); err != nil {
		s.logger.Warn("publish event", "error", err)
	}
}
