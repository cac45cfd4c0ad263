package web

import (
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-g1/pkg/camera"
	"github.com/teslashibe/go-g1/pkg/gesture"
	"github.com/teslashibe/go-g1/pkg/robot"
	"github.com/teslashibe/go-g1/pkg/sequence"
)

// GestureInfo describes one catalog entry.
type GestureInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	State         string `json:"state"`
	Daemon        string `json:"daemon,omitempty"`
	DaemonError   string `json:"daemon_error,omitempty"`
	CameraClients int    `json:"camera_clients"`
	EventClients  int    `json:"event_clients"`
}

// SayRequest is the body of POST /api/say.
type SayRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// GreetRequest is the body of POST /api/greet. Name may be a recognized
// face identity such as "faces/alice2.jpg".
type GreetRequest struct {
	Name string `json:"name"`
}

// VolumeRequest is the body of POST /api/volume.
type VolumeRequest struct {
	Volume *int `json:"volume"`
}

var errBusy = fiber.NewError(fiber.StatusConflict, "robot is busy")

func (s *Server) handleStatus(c *fiber.Ctx) error {
	resp := StatusResponse{
		State:         s.deps.Robot.State().String(),
		CameraClients: s.cameraHub.ClientCount(),
		EventClients:  s.eventHub.ClientCount(),
	}
	if s.deps.Status != nil {
		state, err := s.deps.Status.DaemonStatus(c.UserContext())
		if err != nil {
			resp.DaemonError = err.Error()
		} else {
			resp.Daemon = state
		}
	}
	return c.JSON(resp)
}

func (s *Server) handleListGestures(c *fiber.Ctx) error {
	desc := s.deps.Gestures.Descriptions()
	out := make([]GestureInfo, 0, len(desc))
	for name, d := range desc {
		out = append(out, GestureInfo{Name: name, Description: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return c.JSON(out)
}

func (s *Server) handleRunGesture(c *fiber.Ctx) error {
	name := c.Params("name")
	if !s.deps.Gestures.Has(name) {
		return fiber.NewError(fiber.StatusNotFound, "unknown gesture: "+name)
	}

	if !s.busy.TryLock() {
		return errBusy
	}
	defer s.busy.Unlock()

	err := s.deps.Robot.RunGesture(c.UserContext(), name)
	s.publish(result("gesture", name, err))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"gesture": name, "status": "ok"})
}

func (s *Server) handleSay(c *fiber.Ctx) error {
	var req SayRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if req.Text == "" {
		return fiber.NewError(fiber.StatusBadRequest, "text is required")
	}

	if !s.busy.TryLock() {
		return errBusy
	}
	defer s.busy.Unlock()

	lang := robot.ParseLanguage(req.Language)
	err := s.deps.Robot.Speak(c.UserContext(), req.Text, lang)
	s.publish(result("say", lang.String(), err))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleGreet(c *fiber.Ctx) error {
	if s.deps.Show == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "sequencer not configured")
	}

	var req GreetRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
	}
	name := sequence.VisitorName(req.Name)

	if !s.busy.TryLock() {
		return errBusy
	}
	defer s.busy.Unlock()

	err := s.deps.Show.Run(c.UserContext(), sequence.Greeting(name))
	s.publish(result("greet", name, err))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"visitor": name, "status": "ok"})
}

func (s *Server) handleVolume(c *fiber.Ctx) error {
	var req VolumeRequest
	if err := c.BodyParser(&req); err != nil || req.Volume == nil {
		return fiber.NewError(fiber.StatusBadRequest, "volume is required")
	}
	if *req.Volume < 0 || *req.Volume > 100 {
		return fiber.NewError(fiber.StatusBadRequest, "volume must be 0-100")
	}

	if !s.busy.TryLock() {
		return errBusy
	}
	defer s.busy.Unlock()

	err := s.deps.Robot.SetVolume(c.UserContext(), *req.Volume)
	s.publish(result("volume", "", err))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"volume": *req.Volume})
}

func (s *Server) handleGetCamera(c *fiber.Ctx) error {
	if s.deps.Camera == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "camera not configured")
	}
	return c.JSON(fiber.Map{
		"config":  s.deps.Camera.Config(),
		"presets": camera.PresetNames(),
	})
}

func (s *Server) handleUpdateCamera(c *fiber.Ctx) error {
	if s.deps.Camera == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "camera not configured")
	}

	var patch camera.Patch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	cfg, err := s.deps.Camera.Apply(patch)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s.publish(Event{Type: "camera", Name: cfg.Device, Status: "ok"})
	return c.JSON(cfg)
}

// handleError maps domain errors to status codes.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	var cmdErr *robot.CommandError
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, gesture.ErrUnknown):
		code = fiber.StatusNotFound
	case errors.As(err, &cmdErr):
		code = fiber.StatusBadGateway
	}

	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "status", code, "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func result(typ, name string, err error) Event {
	ev := Event{Type: typ, Name: name, Status: "ok"}
	if err != nil {
		ev.Status = "error"
		ev.Error = err.Error()
	}
	return ev
}
