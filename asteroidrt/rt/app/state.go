package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/gekko3d/asteroids/asteroidrt/rt/core"
)

const MetricFrame = "frame"

// State is everything the frame loop mutates outside the GPU: camera, rotate
// groups, profiler and input tables. It has no device dependencies.
type State struct {
	Field    core.FieldConfig
	Camera   *core.CameraState
	Updater  *core.Updater
	Profiler *Profiler
	Input    core.Input
	Clock    *core.Time
	Logger   core.Logger

	MouseCaptured bool
	ShowStats     bool
	ExitRequested bool

	firstMouse   bool
	lastX, lastY float64
}

// NewState takes ownership of transforms; writer receives the active range
// every frame.
func NewState(cfg core.FieldConfig, transforms []core.InstanceTransform, writer core.RangeWriter, logger core.Logger, now time.Time) *State {
	s := &State{
		Field:      cfg,
		Camera:     core.NewCameraState(),
		Updater:    core.NewUpdater(cfg, transforms, writer),
		Profiler:   NewProfiler(),
		Clock:      core.NewTime(now),
		Logger:     core.LoggerOrNop(logger),
		firstMouse: true,
	}
	s.Updater.SetObserver(s.Profiler)
	return s
}

// Frame runs one host-side step: clock, input, then rotate and upload.
func (s *State) Frame(now time.Time, keys core.KeySource) error {
	s.Clock.Tick(now)
	s.Profiler.Observe(MetricFrame, s.Clock.Dt)

	s.HandleInput(keys)
	return s.Advance()
}

// Advance rotates the active rotate groups and pushes them to the device.
func (s *State) Advance() error {
	active, err := s.Updater.Advance()
	if err != nil {
		return fmt.Errorf("advance instances: %w", err)
	}
	s.Profiler.SetCount("active", active)
	s.Profiler.SetCount("rotate_limit", s.Updater.RotateLimit())
	return nil
}

func (s *State) HandleInput(keys core.KeySource) {
	in := &s.Input
	in.Poll(keys)

	if in.Pressed[core.KeyEscape] {
		s.ExitRequested = true
	}
	if in.Clicked(core.KeyF1) {
		s.ShowStats = !s.ShowStats
	}
	if in.Clicked(core.KeyP) {
		s.Logger.Infof("Debug Info:\n%s", s.StatsText())
	}

	// Uncaptured cursor: the window is just being looked at.
	if !s.MouseCaptured {
		return
	}

	if in.Clicked(core.KeyTab) {
		s.ReleaseMouse()
		return
	}

	dt := s.Clock.Seconds()
	if in.Pressed[core.KeyW] {
		s.Camera.ProcessKeyboard(core.MoveForward, dt)
	}
	if in.Pressed[core.KeyS] {
		s.Camera.ProcessKeyboard(core.MoveBackward, dt)
	}
	if in.Pressed[core.KeyA] {
		s.Camera.ProcessKeyboard(core.MoveLeft, dt)
	}
	if in.Pressed[core.KeyD] {
		s.Camera.ProcessKeyboard(core.MoveRight, dt)
	}

	if in.Clicked(core.KeyPageUp) {
		s.Updater.IncreaseRotateLimit()
		s.Logger.Infof("rotate limit %d/%d (%d active)", s.Updater.RotateLimit(), s.Updater.Groups(), s.Updater.ActiveCount())
	} else if in.Clicked(core.KeyPageDown) {
		s.Updater.DecreaseRotateLimit()
		s.Logger.Infof("rotate limit %d/%d (%d active)", s.Updater.RotateLimit(), s.Updater.Groups(), s.Updater.ActiveCount())
	}
}

func (s *State) CaptureMouse() {
	s.MouseCaptured = true
}

func (s *State) ReleaseMouse() {
	s.MouseCaptured = false
	s.firstMouse = true
	s.Input.Reset()
}

// HandleCursor turns absolute cursor positions into look deltas while captured.
func (s *State) HandleCursor(x, y float64) {
	if !s.MouseCaptured {
		s.firstMouse = true
		return
	}
	if s.firstMouse {
		s.lastX, s.lastY = x, y
		s.firstMouse = false
	}

	dx := float32(x - s.lastX)
	dy := float32(s.lastY - y) // screen y grows downwards
	s.lastX, s.lastY = x, y

	s.Camera.ProcessMouseMovement(dx, dy)
}

func (s *State) HandleScroll(dy float64) {
	if !s.MouseCaptured {
		return
	}
	s.Camera.ProcessScroll(float32(dy))
	s.Logger.Debugf("camera speed %.1f", s.Camera.Speed)
}

func (s *State) StatsText() string {
	var sb strings.Builder
	p := s.Camera.Position
	sb.WriteString(fmt.Sprintf("camera: %.1f, %.1f, %.1f  yaw %.1f pitch %.1f  speed %.1f\n",
		p.X(), p.Y(), p.Z(), s.Camera.Yaw, s.Camera.Pitch, s.Camera.Speed))
	sb.WriteString(fmt.Sprintf("rotate limit: %d/%d  active %d of %d\n",
		s.Updater.RotateLimit(), s.Updater.Groups(), s.Updater.ActiveCount(), len(s.Updater.Instances)))
	sb.WriteString(s.Profiler.GetStatsString())
	return sb.String()
}
